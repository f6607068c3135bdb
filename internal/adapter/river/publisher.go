package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/mesaops/stockshift/internal/domain"
)

// Compile-time checks: Publisher covers both best-effort dispatch ports.
var (
	_ domain.Notifier        = (*Publisher)(nil)
	_ domain.VarianceAlerter = (*Publisher)(nil)
)

// NotificationJobArgs carries a lifecycle transition for asynchronous
// delivery. River serializes this as JSON into its job queue table. It
// includes a snapshot of the transfer at dispatch time, so the worker
// never needs to query the database.
type NotificationJobArgs struct {
	Action                string `json:"action"`
	ActorID               string `json:"actor_id"`
	TransferID            string `json:"transfer_id"`
	TenantID              string `json:"tenant_id"`
	ProductID             string `json:"product_id"`
	SourceLocationID      string `json:"source_location_id"`
	DestinationLocationID string `json:"destination_location_id"`
	Status                string `json:"status"`
	Priority              string `json:"priority"`
	QuantityRequested     int    `json:"quantity_requested"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationJobArgs) Kind() string { return "transfer.notification" }

// VarianceAlertJobArgs carries a shrinkage alert for asynchronous
// delivery to whoever watches stock loss.
type VarianceAlertJobArgs struct {
	TransferID       string  `json:"transfer_id"`
	TenantID         string  `json:"tenant_id"`
	ProductID        string  `json:"product_id"`
	QuantityShipped  int     `json:"quantity_shipped"`
	QuantityReceived int     `json:"quantity_received"`
	Variance         int     `json:"variance"`
	VariancePercent  float64 `json:"variance_percent"`
	VarianceReason   string  `json:"variance_reason,omitempty"`
	DamageReport     string  `json:"damage_report,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (VarianceAlertJobArgs) Kind() string { return "transfer.variance_alert" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher dispatches notifications and variance alerts by enqueuing
// River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Notify enqueues a transition notification as an async job.
func (p *Publisher) Notify(ctx context.Context, action domain.Action, t domain.Transfer, actorID string) error {
	_, err := p.client.Insert(ctx, NotificationJobArgs{
		Action:                string(action),
		ActorID:               actorID,
		TransferID:            t.ID,
		TenantID:              t.TenantID,
		ProductID:             t.ProductID,
		SourceLocationID:      t.SourceLocationID,
		DestinationLocationID: t.DestinationLocationID,
		Status:                string(t.Status),
		Priority:              string(t.Priority),
		QuantityRequested:     t.QuantityRequested,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing notification job: %w", err)
	}
	return nil
}

// TriggerAlert enqueues a shrinkage alert as an async job.
func (p *Publisher) TriggerAlert(ctx context.Context, t domain.Transfer, report domain.VarianceReport) error {
	_, err := p.client.Insert(ctx, VarianceAlertJobArgs{
		TransferID:       t.ID,
		TenantID:         t.TenantID,
		ProductID:        t.ProductID,
		QuantityShipped:  t.QuantityShipped,
		QuantityReceived: t.QuantityReceived,
		Variance:         report.Variance,
		VariancePercent:  report.Percent,
		VarianceReason:   t.VarianceReason,
		DamageReport:     t.DamageReport,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing variance alert job: %w", err)
	}
	return nil
}
