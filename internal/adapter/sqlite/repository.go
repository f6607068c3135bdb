package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mesaops/stockshift/internal/domain"
)

// Compile-time check: TransferRepository implements domain.TransferRepository.
var _ domain.TransferRepository = (*TransferRepository)(nil)

const timeFormat = time.RFC3339Nano

// TransferRepository implements domain.TransferRepository using SQLite.
type TransferRepository struct {
	db *sql.DB
}

const transferColumns = `id, tenant_id, product_id, source_location_id, destination_location_id,
	quantity_requested, quantity_shipped, quantity_received, status, priority,
	requested_by, requested_at, approved_by, approved_at, shipped_by, shipped_at,
	received_by, received_at, cancelled_by, cancelled_at,
	cancellation_reason, variance_reason, damage_report, notes, updated_at`

func (r *TransferRepository) Create(ctx context.Context, t domain.Transfer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transfers (`+transferColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TenantID, t.ProductID, t.SourceLocationID, t.DestinationLocationID,
		t.QuantityRequested, t.QuantityShipped, t.QuantityReceived, string(t.Status), string(t.Priority),
		t.RequestedBy, t.RequestedAt.Format(timeFormat),
		nullString(t.ApprovedBy), nullTime(t.ApprovedAt),
		nullString(t.ShippedBy), nullTime(t.ShippedAt),
		nullString(t.ReceivedBy), nullTime(t.ReceivedAt),
		nullString(t.CancelledBy), nullTime(t.CancelledAt),
		nullString(t.CancellationReason), nullString(t.VarianceReason), nullString(t.DamageReport),
		nullString(t.Notes), t.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting transfer: %w", err)
	}
	return nil
}

func (r *TransferRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Transfer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	)

	t, err := scanTransfer(row)
	if err == sql.ErrNoRows {
		return domain.Transfer{}, &domain.NotFoundError{Resource: "transfer", ID: id}
	}
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("scanning transfer: %w", err)
	}
	return t, nil
}

func (r *TransferRepository) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE tenant_id = ?`
	args := []any{tenantID}

	if filter.LocationID != "" {
		query += ` AND (source_location_id = ? OR destination_location_id = ?)`
		args = append(args, filter.LocationID, filter.LocationID)
	}

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY requested_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transfer row: %w", err)
		}
		transfers = append(transfers, t)
	}

	return transfers, rows.Err()
}

// UpdateGuarded persists t only while the stored row still carries the
// expected status. This conditional write linearizes concurrent
// transitions on the same transfer: the loser of a race sees zero rows
// affected and gets a ConcurrentModificationError instead of silently
// overwriting the winner.
func (r *TransferRepository) UpdateGuarded(ctx context.Context, t domain.Transfer, expected domain.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE transfers SET
			quantity_requested = ?, quantity_shipped = ?, quantity_received = ?,
			status = ?,
			approved_by = ?, approved_at = ?,
			shipped_by = ?, shipped_at = ?,
			received_by = ?, received_at = ?,
			cancelled_by = ?, cancelled_at = ?,
			cancellation_reason = ?, variance_reason = ?, damage_report = ?,
			notes = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ? AND status = ?`,
		t.QuantityRequested, t.QuantityShipped, t.QuantityReceived,
		string(t.Status),
		nullString(t.ApprovedBy), nullTime(t.ApprovedAt),
		nullString(t.ShippedBy), nullTime(t.ShippedAt),
		nullString(t.ReceivedBy), nullTime(t.ReceivedAt),
		nullString(t.CancelledBy), nullTime(t.CancelledAt),
		nullString(t.CancellationReason), nullString(t.VarianceReason), nullString(t.DamageReport),
		nullString(t.Notes), time.Now().UTC().Format(timeFormat),
		t.TenantID, t.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("updating transfer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a lost race from a missing row.
		var exists int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM transfers WHERE tenant_id = ? AND id = ?`, t.TenantID, t.ID,
		).Scan(&exists)
		if err == sql.ErrNoRows {
			return &domain.NotFoundError{Resource: "transfer", ID: t.ID}
		}
		if err != nil {
			return fmt.Errorf("checking transfer existence: %w", err)
		}
		return &domain.ConcurrentModificationError{TransferID: t.ID, Expected: expected}
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransfer(s scanner) (domain.Transfer, error) {
	var t domain.Transfer
	var status, priority, requestedAt, updatedAt string
	var approvedBy, approvedAt, shippedBy, shippedAt sql.NullString
	var receivedBy, receivedAt, cancelledBy, cancelledAt sql.NullString
	var cancellationReason, varianceReason, damageReport, notes sql.NullString

	err := s.Scan(
		&t.ID, &t.TenantID, &t.ProductID, &t.SourceLocationID, &t.DestinationLocationID,
		&t.QuantityRequested, &t.QuantityShipped, &t.QuantityReceived, &status, &priority,
		&t.RequestedBy, &requestedAt,
		&approvedBy, &approvedAt, &shippedBy, &shippedAt,
		&receivedBy, &receivedAt, &cancelledBy, &cancelledAt,
		&cancellationReason, &varianceReason, &damageReport, &notes, &updatedAt,
	)
	if err != nil {
		return domain.Transfer{}, err
	}

	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	t.RequestedAt, _ = time.Parse(timeFormat, requestedAt)
	t.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	t.ApprovedBy = approvedBy.String
	t.ApprovedAt = parseNullTime(approvedAt)
	t.ShippedBy = shippedBy.String
	t.ShippedAt = parseNullTime(shippedAt)
	t.ReceivedBy = receivedBy.String
	t.ReceivedAt = parseNullTime(receivedAt)
	t.CancelledBy = cancelledBy.String
	t.CancelledAt = parseNullTime(cancelledAt)
	t.CancellationReason = cancellationReason.String
	t.VarianceReason = varianceReason.String
	t.DamageReport = damageReport.String
	t.Notes = notes.String

	return t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeFormat)
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(timeFormat, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
