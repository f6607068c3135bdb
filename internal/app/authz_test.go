package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/mesaops/stockshift/internal/domain"
)

func TestCanManage(t *testing.T) {
	tests := []struct {
		name       string
		user       domain.User
		locationID string
		want       bool
	}{
		{"admin anywhere", domain.User{Role: domain.RoleAdmin}, "loc-1", true},
		{"admin with home location elsewhere", domain.User{Role: domain.RoleAdmin, LocationID: "loc-2"}, "loc-1", true},
		{"manager at own location", domain.User{Role: domain.RoleManager, LocationID: "loc-1"}, "loc-1", true},
		{"manager at other location", domain.User{Role: domain.RoleManager, LocationID: "loc-2"}, "loc-1", false},
		{"staff at own location", domain.User{Role: domain.RoleStaff, LocationID: "loc-1"}, "loc-1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := canManage(tc.user, tc.locationID); got != tc.want {
				t.Errorf("canManage = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestRequireManagement(t *testing.T) {
	mgr := domain.User{ID: "u1", Role: domain.RoleManager, LocationID: "loc-1"}

	if err := requireManagement(mgr, "loc-1", "approve"); err != nil {
		t.Errorf("manager at own location: %v", err)
	}

	err := requireManagement(mgr, "loc-2", "approve")
	var ae *domain.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want AuthorizationError", err)
	}
	if ae.Actor != "u1" {
		t.Errorf("actor = %q, want u1", ae.Actor)
	}
	if !strings.Contains(ae.Rule, "approve") || !strings.Contains(ae.Rule, "loc-2") {
		t.Errorf("rule %q should name the operation and location", ae.Rule)
	}
}

func TestAuthorizeCancel(t *testing.T) {
	transfer := domain.Transfer{
		RequestedBy:      "u-req",
		SourceLocationID: "loc-src",
	}

	tests := []struct {
		name    string
		status  domain.Status
		user    domain.User
		allowed bool
	}{
		{"requested requester", domain.StatusRequested, domain.User{ID: "u-req", Role: domain.RoleStaff}, true},
		{"requested source manager", domain.StatusRequested, domain.User{ID: "u2", Role: domain.RoleManager, LocationID: "loc-src"}, true},
		{"requested admin", domain.StatusRequested, domain.User{ID: "u3", Role: domain.RoleAdmin}, true},
		{"requested unrelated staff", domain.StatusRequested, domain.User{ID: "u4", Role: domain.RoleStaff, LocationID: "loc-dst"}, false},
		{"approved requester denied", domain.StatusApproved, domain.User{ID: "u-req", Role: domain.RoleStaff}, false},
		{"approved source manager", domain.StatusApproved, domain.User{ID: "u2", Role: domain.RoleManager, LocationID: "loc-src"}, true},
		{"approved other manager", domain.StatusApproved, domain.User{ID: "u5", Role: domain.RoleManager, LocationID: "loc-dst"}, false},
		{"approved admin", domain.StatusApproved, domain.User{ID: "u3", Role: domain.RoleAdmin}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := transfer
			tr.Status = tc.status
			err := authorizeCancel(tc.user, tr)
			if tc.allowed && err != nil {
				t.Errorf("expected allowed, got %v", err)
			}
			if !tc.allowed {
				var ae *domain.AuthorizationError
				if !errors.As(err, &ae) {
					t.Errorf("err = %v, want AuthorizationError", err)
				}
			}
		})
	}
}

func TestAuthorizeUpdate(t *testing.T) {
	transfer := domain.Transfer{
		RequestedBy:      "u-req",
		SourceLocationID: "loc-src",
		Status:           domain.StatusRequested,
	}

	if err := authorizeUpdate(domain.User{ID: "u-req", Role: domain.RoleStaff}, transfer); err != nil {
		t.Errorf("requester: %v", err)
	}
	if err := authorizeUpdate(domain.User{ID: "u2", Role: domain.RoleManager, LocationID: "loc-src"}, transfer); err != nil {
		t.Errorf("source manager: %v", err)
	}
	if err := authorizeUpdate(domain.User{ID: "u3", Role: domain.RoleStaff, LocationID: "loc-dst"}, transfer); err == nil {
		t.Error("unrelated staff should be denied")
	}
}
