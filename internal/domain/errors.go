package domain

import "fmt"

// ValidationError is returned for malformed input before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when a resource does not resolve within the
// tenant. Tenant isolation is enforced at the lookup, so a resource
// belonging to another tenant is indistinguishable from a missing one.
type NotFoundError struct {
	Resource string // "transfer", "user", "location", "product"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// AuthorizationError is returned when the actor lacks the capability
// required for a transition. Rule names the policy that was not
// satisfied so callers and tests can tell denials apart.
type AuthorizationError struct {
	Actor string
	Rule  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %q not authorized: %s", e.Actor, e.Rule)
}

// ConcurrentModificationError is returned when the guarded conditional
// update affected zero rows because another operation changed the
// transfer's status first. Callers may re-read and retry.
type ConcurrentModificationError struct {
	TransferID string
	Expected   Status
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("transfer %q no longer in state %q", e.TransferID, e.Expected)
}
