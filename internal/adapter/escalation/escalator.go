// Package escalation handles EMERGENCY-priority transfer requests.
package escalation

import (
	"context"
	"log/slog"

	"github.com/mesaops/stockshift/internal/domain"
)

// Compile-time check: Escalator implements domain.Escalator.
var _ domain.Escalator = (*Escalator)(nil)

// Default processing window promised for expedited transfers, in minutes.
const defaultProcessingTimeMinutes = 15

// Escalator flags emergency requests for expedited handling and pages
// the source location's management through the notifier. Auto-approval
// is deliberately off: a human still confirms stock can leave the
// source.
type Escalator struct {
	notifier              domain.Notifier
	processingTimeMinutes int
	log                   *slog.Logger
}

// New creates an escalator that pages through the given notifier.
func New(notifier domain.Notifier, logger *slog.Logger) *Escalator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Escalator{
		notifier:              notifier,
		processingTimeMinutes: defaultProcessingTimeMinutes,
		log:                   logger,
	}
}

// Escalate marks the request expedited and dispatches an urgent
// notification. The returned metadata is informational; the transfer
// still waits in REQUESTED for a human approval.
func (e *Escalator) Escalate(ctx context.Context, t domain.Transfer, actorID string) (domain.EscalationResult, error) {
	e.log.WarnContext(ctx, "emergency transfer requested",
		"transfer_id", t.ID,
		"tenant_id", t.TenantID,
		"product_id", t.ProductID,
		"source_location_id", t.SourceLocationID,
		"quantity", t.QuantityRequested,
		"requested_by", actorID,
	)

	if err := e.notifier.Notify(ctx, domain.ActionCreated, t, actorID); err != nil {
		return domain.EscalationResult{}, err
	}

	return domain.EscalationResult{
		AutoApproved:          false,
		Expedited:             true,
		ProcessingTimeMinutes: e.processingTimeMinutes,
	}, nil
}
