package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mesaops/stockshift/internal/domain"
)

// Compile-time check: StockLedger implements domain.Inventory.
var _ domain.Inventory = (*StockLedger)(nil)

// Reservation states.
const (
	stateReserved = "reserved"
	stateApplied  = "applied"
	stateReleased = "released"
)

// StockLedger implements the two-phase inventory collaborator on
// SQLite. Reservations are keyed by transfer ID, which makes every
// operation idempotent: repeating a call after a partial failure
// converges on the same state without duplicating movements.
type StockLedger struct {
	db *sql.DB
}

// Reserve marks the shipped quantity as in transit and records the
// outbound movement at the source location. The transfer ID doubles as
// the reservation key.
func (s *StockLedger) Reserve(ctx context.Context, t domain.Transfer) (string, error) {
	now := time.Now().UTC().Format(timeFormat)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO stock_reservations (transfer_id, tenant_id, state, quantity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (transfer_id) DO NOTHING`,
		t.ID, t.TenantID, stateReserved, t.QuantityShipped, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("reserving stock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// Already reserved on a previous attempt.
		return t.ID, nil
	}

	if err := s.recordMovement(ctx, t, t.SourceLocationID, "out", t.QuantityShipped); err != nil {
		return "", err
	}

	return t.ID, nil
}

// FinalizeReceipt closes the reservation and records the inbound
// movement at the destination for the quantity that actually arrived,
// not the quantity shipped. Returns the number of ledger operations
// applied (0 on a repeated call).
func (s *StockLedger) FinalizeReceipt(ctx context.Context, t domain.Transfer, quantityReceived int) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE stock_reservations
		 SET state = ?, quantity_received = ?, updated_at = ?
		 WHERE transfer_id = ? AND state = ?`,
		stateApplied, quantityReceived, time.Now().UTC().Format(timeFormat),
		t.ID, stateReserved,
	)
	if err != nil {
		return 0, fmt.Errorf("finalizing receipt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		var state string
		err := s.db.QueryRowContext(ctx,
			`SELECT state FROM stock_reservations WHERE transfer_id = ?`, t.ID,
		).Scan(&state)
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("no reservation for transfer %q", t.ID)
		}
		if err != nil {
			return 0, fmt.Errorf("checking reservation state: %w", err)
		}
		if state == stateApplied {
			// Already finalized; nothing to repeat.
			return 0, nil
		}
		return 0, fmt.Errorf("reservation for transfer %q is %q, cannot finalize", t.ID, state)
	}

	ops := 1 // reservation closed
	if quantityReceived > 0 {
		if err := s.recordMovement(ctx, t, t.DestinationLocationID, "in", quantityReceived); err != nil {
			return ops, err
		}
		ops++
	}

	return ops, nil
}

// Release returns reserved stock to the source when an APPROVED
// transfer is cancelled before receipt.
func (s *StockLedger) Release(ctx context.Context, t domain.Transfer) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE stock_reservations
		 SET state = ?, updated_at = ?
		 WHERE transfer_id = ? AND state = ?`,
		stateReleased, time.Now().UTC().Format(timeFormat),
		t.ID, stateReserved,
	)
	if err != nil {
		return fmt.Errorf("releasing reservation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// No live reservation: either never shipped or already
		// released. Both are fine to repeat.
		return nil
	}

	var quantity int
	if err := s.db.QueryRowContext(ctx,
		`SELECT quantity FROM stock_reservations WHERE transfer_id = ?`, t.ID,
	).Scan(&quantity); err != nil {
		return fmt.Errorf("reading released quantity: %w", err)
	}

	return s.recordMovement(ctx, t, t.SourceLocationID, "in", quantity)
}

func (s *StockLedger) recordMovement(ctx context.Context, t domain.Transfer, locationID, direction string, quantity int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stock_movements (tenant_id, transfer_id, product_id, location_id, direction, quantity, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TenantID, t.ID, t.ProductID, locationID, direction, quantity,
		time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("recording stock movement: %w", err)
	}
	return nil
}
