package domain

import "context"

// TransferRepository defines the persistence contract for transfers.
// The Transfer row is the single unit of mutual exclusion: UpdateGuarded
// only commits if the row's status still matches expected at write time.
type TransferRepository interface {
	Create(ctx context.Context, t Transfer) error
	GetByID(ctx context.Context, tenantID, id string) (Transfer, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Transfer, error)

	// UpdateGuarded persists t only if the stored row still has status
	// expected. It returns ConcurrentModificationError when the row
	// exists but the guard fails, NotFoundError when it does not exist.
	UpdateGuarded(ctx context.Context, t Transfer, expected Status) error
}

// ListFilter holds optional criteria for listing transfers.
// LocationID matches source or destination.
type ListFilter struct {
	LocationID string
	Status     *Status
	Limit      int
	Offset     int
}

// AuditLog is the append-only ledger of transfer mutations. No Update,
// no Delete; corrections are new entries.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
	ForTransfer(ctx context.Context, tenantID, transferID string) ([]AuditEntry, error)
}

// Directory resolves tenant-scoped identities. Lookups double as tenant
// isolation checks: anything outside the tenant is a NotFoundError.
type Directory interface {
	UserByID(ctx context.Context, tenantID, userID string) (User, error)
	LocationByID(ctx context.Context, tenantID, locationID string) (Location, error)
	ProductByID(ctx context.Context, tenantID, productID string) (Product, error)
}

// Inventory is the two-phase stock commit collaborator: reserve source
// stock at shipment, finalize destination stock at receipt, release on
// cancellation. All three are idempotent per transfer; the engine may
// retry after a partial failure.
type Inventory interface {
	Reserve(ctx context.Context, t Transfer) (reservationKey string, err error)
	FinalizeReceipt(ctx context.Context, t Transfer, quantityReceived int) (operationsApplied int, err error)
	Release(ctx context.Context, t Transfer) error
}

// Notifier dispatches transition notifications. Fire-and-forget: the
// engine never consumes a return value for control flow, and a failure
// must not unwind a committed transition.
type Notifier interface {
	Notify(ctx context.Context, action Action, t Transfer, actorID string) error
}

// EscalationResult is metadata returned by the emergency escalation
// collaborator. The engine logs it but does not act on it.
type EscalationResult struct {
	AutoApproved          bool
	Expedited             bool
	ProcessingTimeMinutes int
}

// Escalator handles EMERGENCY-priority transfer requests in place of
// the standard requested notification.
type Escalator interface {
	Escalate(ctx context.Context, t Transfer, actorID string) (EscalationResult, error)
}

// VarianceAlerter is invoked when a receipt's shrinkage trips a
// threshold. Best-effort, like the Notifier.
type VarianceAlerter interface {
	TriggerAlert(ctx context.Context, t Transfer, report VarianceReport) error
}

// TransitionValidator decides whether an event is legal from the
// current status and returns the destination status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}
