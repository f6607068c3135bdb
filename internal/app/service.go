package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mesaops/stockshift/internal/domain"
)

// TransferService orchestrates the transfer lifecycle. Every mutating
// operation follows the same three-phase contract:
//
//  1. load and validate: tenant-scoped resolution, state precondition
//     via the transition validator, authorization policy;
//  2. guarded persist: a conditional update keyed on the expected prior
//     status, so concurrent transitions on the same transfer are
//     linearized rather than silently overwritten;
//  3. audit append and best-effort collaborators: once the row is
//     committed it is the source of truth, so audit-write and
//     collaborator failures are logged and summarized in the audit
//     note, never returned to the caller.
type TransferService struct {
	repo       domain.TransferRepository
	audit      domain.AuditLog
	validator  domain.TransitionValidator
	directory  domain.Directory
	inventory  domain.Inventory
	notifier   domain.Notifier
	escalator  domain.Escalator
	alerter    domain.VarianceAlerter
	thresholds domain.VarianceThresholds
	log        *slog.Logger
}

// Deps bundles the ports a TransferService needs. Thresholds and Logger
// are optional; zero values fall back to the platform defaults.
type Deps struct {
	Repo       domain.TransferRepository
	Audit      domain.AuditLog
	Validator  domain.TransitionValidator
	Directory  domain.Directory
	Inventory  domain.Inventory
	Notifier   domain.Notifier
	Escalator  domain.Escalator
	Alerter    domain.VarianceAlerter
	Thresholds domain.VarianceThresholds
	Logger     *slog.Logger
}

// NewTransferService creates a service with the given adapters.
func NewTransferService(deps Deps) *TransferService {
	thresholds := deps.Thresholds
	if thresholds == (domain.VarianceThresholds{}) {
		thresholds = domain.DefaultVarianceThresholds
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TransferService{
		repo:       deps.Repo,
		audit:      deps.Audit,
		validator:  deps.Validator,
		directory:  deps.Directory,
		inventory:  deps.Inventory,
		notifier:   deps.Notifier,
		escalator:  deps.Escalator,
		alerter:    deps.Alerter,
		thresholds: thresholds,
		log:        logger,
	}
}

// CreateInput holds the parameters for a new transfer request.
type CreateInput struct {
	TenantID              string
	ActorID               string
	ProductID             string
	SourceLocationID      string
	DestinationLocationID string
	Quantity              int
	Priority              domain.Priority
	Notes                 string
}

// Create validates and persists a new REQUESTED transfer. EMERGENCY
// requests take the escalation path instead of the standard request
// notification.
func (s *TransferService) Create(ctx context.Context, in CreateInput) (domain.Transfer, error) {
	if in.Quantity <= 0 {
		return domain.Transfer{}, &domain.ValidationError{Field: "quantity_requested", Reason: "must be positive"}
	}
	if in.SourceLocationID == in.DestinationLocationID {
		return domain.Transfer{}, &domain.ValidationError{Field: "destination_location_id", Reason: "must differ from source location"}
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !domain.ValidPriority(priority) {
		return domain.Transfer{}, &domain.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", priority)}
	}

	// Tenant-scoped resolution; each failed lookup is a NotFoundError.
	if _, err := s.directory.UserByID(ctx, in.TenantID, in.ActorID); err != nil {
		return domain.Transfer{}, err
	}
	if _, err := s.directory.ProductByID(ctx, in.TenantID, in.ProductID); err != nil {
		return domain.Transfer{}, err
	}
	if _, err := s.directory.LocationByID(ctx, in.TenantID, in.SourceLocationID); err != nil {
		return domain.Transfer{}, err
	}
	if _, err := s.directory.LocationByID(ctx, in.TenantID, in.DestinationLocationID); err != nil {
		return domain.Transfer{}, err
	}

	id, err := generateID()
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("generating transfer id: %w", err)
	}

	t := domain.NewTransfer(id, in.TenantID, in.ProductID, in.SourceLocationID, in.DestinationLocationID,
		in.Quantity, priority, in.ActorID, in.Notes)

	if err := s.repo.Create(ctx, t); err != nil {
		return domain.Transfer{}, fmt.Errorf("creating transfer: %w", err)
	}

	s.appendAudit(ctx, t, domain.ActionCreated, "", domain.Transfer{}, in.ActorID, in.Notes)

	if t.Priority == domain.PriorityEmergency {
		res, err := s.escalator.Escalate(ctx, t, in.ActorID)
		if err != nil {
			s.log.ErrorContext(ctx, "emergency escalation failed",
				"transfer_id", t.ID, "tenant_id", t.TenantID, "error", err)
		} else {
			s.log.InfoContext(ctx, "emergency transfer escalated",
				"transfer_id", t.ID, "tenant_id", t.TenantID,
				"auto_approved", res.AutoApproved, "expedited", res.Expedited,
				"processing_time_minutes", res.ProcessingTimeMinutes)
		}
	} else {
		s.notify(ctx, domain.ActionCreated, t, in.ActorID)
	}

	return t, nil
}

// Approve moves a REQUESTED transfer to APPROVED. Restricted to actors
// with management authority over the source location.
func (s *TransferService) Approve(ctx context.Context, tenantID, transferID, actorID, notes string) (domain.Transfer, error) {
	user, t, err := s.load(ctx, tenantID, transferID, actorID)
	if err != nil {
		return domain.Transfer{}, err
	}

	prior := t.Status
	newStatus, err := s.validator.Apply(ctx, prior, domain.EventApprove)
	if err != nil {
		return domain.Transfer{}, err
	}

	if err := requireManagement(user, t.SourceLocationID, "approve"); err != nil {
		return domain.Transfer{}, err
	}

	before := t
	now := time.Now().UTC()
	t.Status = newStatus
	t.ApprovedBy = actorID
	t.ApprovedAt = &now

	if err := s.repo.UpdateGuarded(ctx, t, prior); err != nil {
		return domain.Transfer{}, err
	}

	s.appendAudit(ctx, t, domain.ActionApproved, prior, before, actorID, notes)
	s.notify(ctx, domain.ActionApproved, t, actorID)

	return t, nil
}

// Reject declines a REQUESTED transfer, recording the mandatory reason
// as the cancellation reason. The audit entry is tagged REJECTED even
// though the status lands in CANCELLED.
func (s *TransferService) Reject(ctx context.Context, tenantID, transferID, actorID, reason string) (domain.Transfer, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.Transfer{}, &domain.ValidationError{Field: "reason", Reason: "is required to reject a transfer"}
	}

	user, t, err := s.load(ctx, tenantID, transferID, actorID)
	if err != nil {
		return domain.Transfer{}, err
	}

	prior := t.Status
	newStatus, err := s.validator.Apply(ctx, prior, domain.EventReject)
	if err != nil {
		return domain.Transfer{}, err
	}

	if err := requireManagement(user, t.SourceLocationID, "reject"); err != nil {
		return domain.Transfer{}, err
	}

	before := t
	now := time.Now().UTC()
	t.Status = newStatus
	t.CancelledBy = actorID
	t.CancelledAt = &now
	t.CancellationReason = reason

	if err := s.repo.UpdateGuarded(ctx, t, prior); err != nil {
		return domain.Transfer{}, err
	}

	s.appendAudit(ctx, t, domain.ActionRejected, prior, before, actorID, reason)
	s.notify(ctx, domain.ActionRejected, t, actorID)

	return t, nil
}

// Ship moves an APPROVED transfer to SHIPPED and begins the two-phase
// inventory commit by reserving source stock. The shipped quantity is
// always the full requested quantity; partial picks are representable
// in the data model but never produced here.
func (s *TransferService) Ship(ctx context.Context, tenantID, transferID, actorID, notes string) (domain.Transfer, error) {
	user, t, err := s.load(ctx, tenantID, transferID, actorID)
	if err != nil {
		return domain.Transfer{}, err
	}

	prior := t.Status
	newStatus, err := s.validator.Apply(ctx, prior, domain.EventShip)
	if err != nil {
		return domain.Transfer{}, err
	}

	if err := requireManagement(user, t.SourceLocationID, "ship"); err != nil {
		return domain.Transfer{}, err
	}

	before := t
	now := time.Now().UTC()
	t.Status = newStatus
	t.QuantityShipped = t.QuantityRequested
	t.ShippedBy = actorID
	t.ShippedAt = &now

	if err := s.repo.UpdateGuarded(ctx, t, prior); err != nil {
		return domain.Transfer{}, err
	}

	// Reservation failure never unwinds the committed transition; the
	// outcome lands in the audit note for reconciliation.
	reserved := true
	if _, err := s.inventory.Reserve(ctx, t); err != nil {
		reserved = false
		s.log.ErrorContext(ctx, "stock reservation failed",
			"transfer_id", t.ID, "tenant_id", t.TenantID, "error", err)
	}

	note := fmt.Sprintf("shipped %d units; stock reserved: %t", t.QuantityShipped, reserved)
	if notes != "" {
		note = notes + "; " + note
	}

	s.appendAudit(ctx, t, domain.ActionShipped, prior, before, actorID, note)
	s.notify(ctx, domain.ActionShipped, t, actorID)

	return t, nil
}

// ReceiveInput holds the parameters for receiving a SHIPPED transfer.
type ReceiveInput struct {
	TenantID         string
	TransferID       string
	ActorID          string
	QuantityReceived int
	ReceivedAt       time.Time
	VarianceReason   string
	DamageReport     string
	Notes            string
}

// Receive closes out a SHIPPED transfer, computing shrinkage between
// shipped and received quantities and finalizing destination stock for
// the received amount. Any authenticated actor within the tenant may
// receive; there is no role restriction on this transition.
func (s *TransferService) Receive(ctx context.Context, in ReceiveInput) (domain.Transfer, error) {
	_, t, err := s.load(ctx, in.TenantID, in.TransferID, in.ActorID)
	if err != nil {
		return domain.Transfer{}, err
	}

	prior := t.Status
	newStatus, err := s.validator.Apply(ctx, prior, domain.EventReceive)
	if err != nil {
		return domain.Transfer{}, err
	}

	if in.QuantityReceived < 0 {
		return domain.Transfer{}, &domain.ValidationError{Field: "quantity_received", Reason: "must not be negative"}
	}
	if in.QuantityReceived > t.QuantityShipped {
		return domain.Transfer{}, &domain.ValidationError{
			Field:  "quantity_received",
			Reason: fmt.Sprintf("%d exceeds shipped quantity %d", in.QuantityReceived, t.QuantityShipped),
		}
	}

	report, err := s.thresholds.Analyze(t.QuantityShipped, in.QuantityReceived)
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("analyzing variance: %w", err)
	}

	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	before := t
	t.Status = newStatus
	t.QuantityReceived = in.QuantityReceived
	t.ReceivedBy = in.ActorID
	t.ReceivedAt = &receivedAt
	t.DamageReport = in.DamageReport
	if report.Variance > 0 {
		t.VarianceReason = in.VarianceReason
		if t.VarianceReason == "" {
			t.VarianceReason = "variance not explained at receipt"
		}
	}

	if err := s.repo.UpdateGuarded(ctx, t, prior); err != nil {
		return domain.Transfer{}, err
	}

	finalized := true
	ops := 0
	if ops, err = s.inventory.FinalizeReceipt(ctx, t, in.QuantityReceived); err != nil {
		finalized = false
		s.log.ErrorContext(ctx, "inventory finalization failed",
			"transfer_id", t.ID, "tenant_id", t.TenantID, "error", err)
	}

	note := fmt.Sprintf("received %d of %d shipped; variance %d (%.1f%%); alert fired: %t; inventory finalized: %t (%d operations)",
		in.QuantityReceived, t.QuantityShipped, report.Variance, report.Percent, report.AlertTriggered, finalized, ops)
	if in.Notes != "" {
		note = in.Notes + "; " + note
	}

	s.appendAudit(ctx, t, domain.ActionReceived, prior, before, in.ActorID, note)

	if report.AlertTriggered {
		if err := s.alerter.TriggerAlert(ctx, t, report); err != nil {
			s.log.ErrorContext(ctx, "variance alert dispatch failed",
				"transfer_id", t.ID, "tenant_id", t.TenantID, "error", err)
		}
	}

	s.notify(ctx, domain.ActionReceived, t, in.ActorID)

	return t, nil
}

// Cancel aborts a REQUESTED or APPROVED transfer. Cancelling an
// APPROVED transfer releases the earlier stock reservation best-effort;
// the release outcome is recorded in the audit note.
func (s *TransferService) Cancel(ctx context.Context, tenantID, transferID, actorID, reason string) (domain.Transfer, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.Transfer{}, &domain.ValidationError{Field: "reason", Reason: "is required to cancel a transfer"}
	}

	user, t, err := s.load(ctx, tenantID, transferID, actorID)
	if err != nil {
		return domain.Transfer{}, err
	}

	prior := t.Status
	newStatus, err := s.validator.Apply(ctx, prior, domain.EventCancel)
	if err != nil {
		return domain.Transfer{}, err
	}

	if err := authorizeCancel(user, t); err != nil {
		return domain.Transfer{}, err
	}

	before := t
	now := time.Now().UTC()
	t.Status = newStatus
	t.CancelledBy = actorID
	t.CancelledAt = &now
	t.CancellationReason = reason

	if err := s.repo.UpdateGuarded(ctx, t, prior); err != nil {
		return domain.Transfer{}, err
	}

	note := reason
	if prior == domain.StatusApproved {
		released := true
		if err := s.inventory.Release(ctx, t); err != nil {
			released = false
			s.log.ErrorContext(ctx, "stock release failed",
				"transfer_id", t.ID, "tenant_id", t.TenantID, "error", err)
		}
		note = fmt.Sprintf("%s; stock released: %t", reason, released)
	}

	s.appendAudit(ctx, t, domain.ActionCancelled, prior, before, actorID, note)
	s.notify(ctx, domain.ActionCancelled, t, actorID)

	return t, nil
}

// UpdateInput holds the editable fields of a pending transfer request.
// Nil fields are left unchanged.
type UpdateInput struct {
	QuantityRequested *int
	Notes             *string
}

// Update edits a transfer's quantity or notes. Only REQUESTED transfers
// are editable; once approved they are immutable to edits.
func (s *TransferService) Update(ctx context.Context, tenantID, transferID, actorID string, in UpdateInput) (domain.Transfer, error) {
	user, t, err := s.load(ctx, tenantID, transferID, actorID)
	if err != nil {
		return domain.Transfer{}, err
	}

	if t.Status != domain.StatusRequested {
		return domain.Transfer{}, &domain.TransitionError{Event: "update", Current: t.Status}
	}

	if err := authorizeUpdate(user, t); err != nil {
		return domain.Transfer{}, err
	}

	if in.QuantityRequested != nil && *in.QuantityRequested <= 0 {
		return domain.Transfer{}, &domain.ValidationError{Field: "quantity_requested", Reason: "must be positive"}
	}

	before := t
	var changed []string
	if in.QuantityRequested != nil {
		t.QuantityRequested = *in.QuantityRequested
		changed = append(changed, "quantity_requested")
	}
	if in.Notes != nil {
		t.Notes = *in.Notes
		changed = append(changed, "notes")
	}

	if len(changed) == 0 {
		return t, nil
	}

	if err := s.repo.UpdateGuarded(ctx, t, domain.StatusRequested); err != nil {
		return domain.Transfer{}, err
	}

	s.appendAudit(ctx, t, domain.ActionUpdated, domain.StatusRequested, before, actorID,
		"updated fields: "+strings.Join(changed, ", "))

	return t, nil
}

// ForLocation lists a tenant's transfers where the location is either
// source or destination.
func (s *TransferService) ForLocation(ctx context.Context, tenantID, locationID string, filter domain.ListFilter) ([]domain.Transfer, error) {
	if _, err := s.directory.LocationByID(ctx, tenantID, locationID); err != nil {
		return nil, err
	}

	filter.LocationID = locationID
	return s.repo.List(ctx, tenantID, filter)
}

// ByStatus lists a tenant's transfers in the given status.
func (s *TransferService) ByStatus(ctx context.Context, tenantID string, status domain.Status, filter domain.ListFilter) ([]domain.Transfer, error) {
	switch status {
	case domain.StatusRequested, domain.StatusApproved, domain.StatusShipped, domain.StatusReceived, domain.StatusCancelled:
	default:
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	filter.Status = &status
	return s.repo.List(ctx, tenantID, filter)
}

// TransferDetails joins a transfer with its full audit trail, oldest
// entry first.
type TransferDetails struct {
	Transfer   domain.Transfer
	AuditTrail []domain.AuditEntry
}

// Details returns a transfer and its audit chain.
func (s *TransferService) Details(ctx context.Context, tenantID, transferID string) (TransferDetails, error) {
	t, err := s.repo.GetByID(ctx, tenantID, transferID)
	if err != nil {
		return TransferDetails{}, err
	}

	trail, err := s.audit.ForTransfer(ctx, tenantID, transferID)
	if err != nil {
		return TransferDetails{}, fmt.Errorf("loading audit trail: %w", err)
	}

	return TransferDetails{Transfer: t, AuditTrail: trail}, nil
}

// load resolves the actor within the tenant and fetches the transfer.
// The user lookup doubles as the tenant-membership check every
// operation requires.
func (s *TransferService) load(ctx context.Context, tenantID, transferID, actorID string) (domain.User, domain.Transfer, error) {
	user, err := s.directory.UserByID(ctx, tenantID, actorID)
	if err != nil {
		return domain.User{}, domain.Transfer{}, err
	}

	t, err := s.repo.GetByID(ctx, tenantID, transferID)
	if err != nil {
		return domain.User{}, domain.Transfer{}, err
	}

	return user, t, nil
}

// appendAudit writes one ledger entry for a committed mutation. The
// transition is already persisted, so an append failure is logged with
// full context rather than surfaced to the caller.
func (s *TransferService) appendAudit(ctx context.Context, t domain.Transfer, action domain.Action, oldStatus domain.Status, before domain.Transfer, actorID, notes string) {
	id, err := generateID()
	if err != nil {
		s.log.ErrorContext(ctx, "generating audit entry id failed",
			"transfer_id", t.ID, "tenant_id", t.TenantID, "action", action, "error", err)
		return
	}

	entry := domain.AuditEntry{
		ID:          id,
		TenantID:    t.TenantID,
		TransferID:  t.ID,
		Action:      action,
		OldStatus:   oldStatus,
		NewStatus:   t.Status,
		NewValues:   domain.Snapshot(t),
		PerformedBy: actorID,
		PerformedAt: time.Now().UTC(),
		Notes:       notes,
	}
	if action != domain.ActionCreated {
		entry.OldValues = domain.Snapshot(before)
	}

	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "audit append failed",
			"transfer_id", t.ID, "tenant_id", t.TenantID, "action", action,
			"performed_by", actorID, "error", err)
	}
}

// notify dispatches a transition notification fire-and-forget.
func (s *TransferService) notify(ctx context.Context, action domain.Action, t domain.Transfer, actorID string) {
	if err := s.notifier.Notify(ctx, action, t, actorID); err != nil {
		s.log.ErrorContext(ctx, "notification dispatch failed",
			"transfer_id", t.ID, "tenant_id", t.TenantID, "action", action, "error", err)
	}
}
