package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mesaops/stockshift/internal/domain"
)

// Compile-time check: AuditLog implements domain.AuditLog.
var _ domain.AuditLog = (*AuditLog)(nil)

// AuditLog implements domain.AuditLog using SQLite. The table is
// append-only: this type exposes no update or delete.
type AuditLog struct {
	db *sql.DB
}

func (l *AuditLog) Append(ctx context.Context, e domain.AuditEntry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO transfer_audit_log
			(id, tenant_id, transfer_id, action, old_status, new_status,
			 old_values, new_values, performed_by, performed_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TenantID, e.TransferID, string(e.Action),
		nullString(string(e.OldStatus)), string(e.NewStatus),
		nullString(e.OldValues), e.NewValues,
		e.PerformedBy, e.PerformedAt.Format(timeFormat), nullString(e.Notes),
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// ForTransfer returns the full audit chain for a transfer, oldest first.
func (l *AuditLog) ForTransfer(ctx context.Context, tenantID, transferID string) ([]domain.AuditEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, tenant_id, transfer_id, action, old_status, new_status,
		        old_values, new_values, performed_by, performed_at, notes
		 FROM transfer_audit_log
		 WHERE tenant_id = ? AND transfer_id = ?
		 ORDER BY performed_at ASC, seq ASC`,
		tenantID, transferID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var action, performedAt string
		var oldStatus, oldValues, notes sql.NullString
		var newStatus string

		err := rows.Scan(&e.ID, &e.TenantID, &e.TransferID, &action, &oldStatus, &newStatus,
			&oldValues, &e.NewValues, &e.PerformedBy, &performedAt, &notes)
		if err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		e.Action = domain.Action(action)
		e.OldStatus = domain.Status(oldStatus.String)
		e.NewStatus = domain.Status(newStatus)
		e.OldValues = oldValues.String
		e.Notes = notes.String
		e.PerformedAt, _ = time.Parse(timeFormat, performedAt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
