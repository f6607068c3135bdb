package domain_test

import (
	"testing"
	"time"

	"github.com/mesaops/stockshift/internal/domain"
)

func TestNewTransfer(t *testing.T) {
	before := time.Now().UTC()
	tr := domain.NewTransfer("tr-1", "tn-1", "p-1", "l-1", "l-2", 50, domain.PriorityNormal, "u-1", "weekly restock")
	after := time.Now().UTC()

	if tr.ID != "tr-1" {
		t.Errorf("ID = %q, want %q", tr.ID, "tr-1")
	}
	if tr.TenantID != "tn-1" {
		t.Errorf("TenantID = %q, want %q", tr.TenantID, "tn-1")
	}
	if tr.Status != domain.StatusRequested {
		t.Errorf("Status = %q, want %q", tr.Status, domain.StatusRequested)
	}
	if tr.QuantityRequested != 50 {
		t.Errorf("QuantityRequested = %d, want 50", tr.QuantityRequested)
	}
	if tr.QuantityShipped != 0 {
		t.Errorf("QuantityShipped = %d, want 0", tr.QuantityShipped)
	}
	if tr.RequestedBy != "u-1" {
		t.Errorf("RequestedBy = %q, want %q", tr.RequestedBy, "u-1")
	}
	if tr.RequestedAt.Before(before) || tr.RequestedAt.After(after) {
		t.Errorf("RequestedAt = %v, want between %v and %v", tr.RequestedAt, before, after)
	}
	if tr.ApprovedAt != nil || tr.ReceivedAt != nil || tr.CancelledAt != nil {
		t.Error("terminal and intermediate timestamps must be nil on a new transfer")
	}
}

func TestTransitions_AllEventsHaveEntries(t *testing.T) {
	events := []domain.Event{
		domain.EventApprove,
		domain.EventReject,
		domain.EventShip,
		domain.EventReceive,
		domain.EventCancel,
	}

	for _, event := range events {
		found := false
		for _, tr := range domain.Transitions {
			if tr.Event == event {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("event %q has no transition defined", event)
		}
	}
}

func TestTransitions_ValidPaths(t *testing.T) {
	cases := []struct {
		event domain.Event
		src   domain.Status
		dst   domain.Status
	}{
		{domain.EventApprove, domain.StatusRequested, domain.StatusApproved},
		{domain.EventReject, domain.StatusRequested, domain.StatusCancelled},
		{domain.EventShip, domain.StatusApproved, domain.StatusShipped},
		{domain.EventReceive, domain.StatusShipped, domain.StatusReceived},
		{domain.EventCancel, domain.StatusRequested, domain.StatusCancelled},
		{domain.EventCancel, domain.StatusApproved, domain.StatusCancelled},
	}

	for _, tc := range cases {
		found := false
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src && tr.Dst == tc.dst {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing transition: %q from %q → %q", tc.event, tc.src, tc.dst)
		}
	}
}

func TestTransitions_TerminalStatesHaveNoExits(t *testing.T) {
	for _, tr := range domain.Transitions {
		if tr.Src == domain.StatusReceived || tr.Src == domain.StatusCancelled {
			t.Errorf("unexpected transition out of terminal state: %q from %q", tr.Event, tr.Src)
		}
	}
}

func TestTransitions_InvalidPaths(t *testing.T) {
	// These transitions must NOT exist.
	invalid := []struct {
		event domain.Event
		src   domain.Status
	}{
		{domain.EventApprove, domain.StatusApproved},
		{domain.EventApprove, domain.StatusShipped},
		{domain.EventReject, domain.StatusApproved},
		{domain.EventShip, domain.StatusRequested},
		{domain.EventShip, domain.StatusShipped},
		{domain.EventReceive, domain.StatusApproved},
		{domain.EventCancel, domain.StatusShipped},
	}

	for _, tc := range invalid {
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src {
				t.Errorf("unexpected transition: %q from %q should not exist", tc.event, tc.src)
			}
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	cases := []struct {
		status domain.Status
		want   bool
	}{
		{domain.StatusRequested, false},
		{domain.StatusApproved, false},
		{domain.StatusShipped, false},
		{domain.StatusReceived, true},
		{domain.StatusCancelled, true},
	}

	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.want {
			t.Errorf("Terminal(%q) = %t, want %t", tc.status, got, tc.want)
		}
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []domain.Priority{domain.PriorityNormal, domain.PriorityHigh, domain.PriorityEmergency} {
		if !domain.ValidPriority(p) {
			t.Errorf("ValidPriority(%q) = false, want true", p)
		}
	}
	if domain.ValidPriority("URGENT") {
		t.Error(`ValidPriority("URGENT") = true, want false`)
	}
}
