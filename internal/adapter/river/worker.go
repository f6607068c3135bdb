package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// NotificationWorker processes transition notification jobs from the
// River queue. For now it logs the notification; future versions will
// fan out to location inboxes, email, or webhooks.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationJobArgs]
}

// Work processes a single notification job.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	slog.InfoContext(ctx, "delivering transfer notification",
		"action", job.Args.Action,
		"transfer_id", job.Args.TransferID,
		"tenant_id", job.Args.TenantID,
		"status", job.Args.Status,
		"priority", job.Args.Priority,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// VarianceAlertWorker processes shrinkage alert jobs. Alerts are
// logged at warning level so they stand out in aggregated logs.
type VarianceAlertWorker struct {
	river.WorkerDefaults[VarianceAlertJobArgs]
}

// Work processes a single variance alert job.
func (w *VarianceAlertWorker) Work(ctx context.Context, job *river.Job[VarianceAlertJobArgs]) error {
	slog.WarnContext(ctx, "stock variance alert",
		"transfer_id", job.Args.TransferID,
		"tenant_id", job.Args.TenantID,
		"product_id", job.Args.ProductID,
		"shipped", job.Args.QuantityShipped,
		"received", job.Args.QuantityReceived,
		"variance", job.Args.Variance,
		"variance_percent", job.Args.VariancePercent,
		"reason", job.Args.VarianceReason,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
