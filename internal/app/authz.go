package app

import (
	"fmt"

	"github.com/mesaops/stockshift/internal/domain"
)

// canManage reports whether u has management authority over a location:
// admins everywhere in the tenant, managers at their own location.
func canManage(u domain.User, locationID string) bool {
	if u.Role == domain.RoleAdmin {
		return true
	}
	return u.Role == domain.RoleManager && u.LocationID == locationID
}

// requireManagement gates the approve, reject, and ship transitions on
// management authority over the transfer's source location.
func requireManagement(u domain.User, locationID, operation string) error {
	if canManage(u, locationID) {
		return nil
	}
	return &domain.AuthorizationError{
		Actor: u.ID,
		Rule:  fmt.Sprintf("%s requires management authority over location %q", operation, locationID),
	}
}

// authorizeCancel applies the cancellation policy. The rules differ by
// the transfer's current status; the returned error names the rule that
// was not satisfied. Callers run the state machine first, so only
// REQUESTED and APPROVED reach this point.
func authorizeCancel(u domain.User, t domain.Transfer) error {
	switch t.Status {
	case domain.StatusRequested:
		if u.ID == t.RequestedBy || canManage(u, t.SourceLocationID) {
			return nil
		}
		return &domain.AuthorizationError{
			Actor: u.ID,
			Rule:  "cancelling a REQUESTED transfer requires the original requester or location management",
		}
	case domain.StatusApproved:
		if canManage(u, t.SourceLocationID) {
			return nil
		}
		return &domain.AuthorizationError{
			Actor: u.ID,
			Rule:  "cancelling an APPROVED transfer requires source-location management or admin",
		}
	default:
		return &domain.AuthorizationError{
			Actor: u.ID,
			Rule:  fmt.Sprintf("no cancellation rule permits state %q", t.Status),
		}
	}
}

// authorizeUpdate allows edits to a pending request by its requester or
// by source-location management.
func authorizeUpdate(u domain.User, t domain.Transfer) error {
	if u.ID == t.RequestedBy || canManage(u, t.SourceLocationID) {
		return nil
	}
	return &domain.AuthorizationError{
		Actor: u.ID,
		Rule:  "updating a transfer requires the original requester or location management",
	}
}
