package sqlite

import (
	"context"
	"testing"

	"github.com/mesaops/stockshift/internal/domain"
)

func shippedTransfer(id string) domain.Transfer {
	t := sampleTransfer(id, "tenant-1")
	t.Status = domain.StatusShipped
	t.QuantityShipped = t.QuantityRequested
	return t
}

func countMovements(t *testing.T, store *Store, transferID, direction string) int {
	t.Helper()
	var n int
	err := store.DB().QueryRow(
		`SELECT COUNT(*) FROM stock_movements WHERE transfer_id = ? AND direction = ?`,
		transferID, direction,
	).Scan(&n)
	if err != nil {
		t.Fatalf("counting movements: %v", err)
	}
	return n
}

func TestReserveIsIdempotent(t *testing.T) {
	store := newStore(t)
	ledger := store.StockLedger()
	ctx := context.Background()

	transfer := shippedTransfer("tr-1")

	key, err := ledger.Reserve(ctx, transfer)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if key != "tr-1" {
		t.Errorf("reservation key = %q, want the transfer id", key)
	}

	// A retry converges without a second movement.
	if _, err := ledger.Reserve(ctx, transfer); err != nil {
		t.Fatalf("repeated Reserve: %v", err)
	}

	if n := countMovements(t, store, "tr-1", "out"); n != 1 {
		t.Errorf("outbound movements = %d, want 1", n)
	}
}

func TestFinalizeReceipt(t *testing.T) {
	store := newStore(t)
	ledger := store.StockLedger()
	ctx := context.Background()

	transfer := shippedTransfer("tr-1")
	if _, err := ledger.Reserve(ctx, transfer); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	ops, err := ledger.FinalizeReceipt(ctx, transfer, 45)
	if err != nil {
		t.Fatalf("FinalizeReceipt: %v", err)
	}
	if ops != 2 {
		t.Errorf("ops = %d, want 2 (close reservation, inbound movement)", ops)
	}

	var quantity int
	err = store.DB().QueryRow(
		`SELECT quantity FROM stock_movements WHERE transfer_id = ? AND direction = 'in'`, "tr-1",
	).Scan(&quantity)
	if err != nil {
		t.Fatalf("reading inbound movement: %v", err)
	}
	if quantity != 45 {
		t.Errorf("inbound quantity = %d, want the received 45, not the shipped 50", quantity)
	}

	// Repeating after success is a no-op.
	ops, err = ledger.FinalizeReceipt(ctx, transfer, 45)
	if err != nil {
		t.Fatalf("repeated FinalizeReceipt: %v", err)
	}
	if ops != 0 {
		t.Errorf("repeated ops = %d, want 0", ops)
	}
	if n := countMovements(t, store, "tr-1", "in"); n != 1 {
		t.Errorf("inbound movements = %d, want 1", n)
	}
}

func TestFinalizeReceiptZeroUnits(t *testing.T) {
	store := newStore(t)
	ledger := store.StockLedger()
	ctx := context.Background()

	transfer := shippedTransfer("tr-1")
	if _, err := ledger.Reserve(ctx, transfer); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	ops, err := ledger.FinalizeReceipt(ctx, transfer, 0)
	if err != nil {
		t.Fatalf("FinalizeReceipt: %v", err)
	}
	if ops != 1 {
		t.Errorf("ops = %d, want 1 (no inbound movement for a total loss)", ops)
	}
	if n := countMovements(t, store, "tr-1", "in"); n != 0 {
		t.Errorf("inbound movements = %d, want 0", n)
	}
}

func TestFinalizeReceiptWithoutReservation(t *testing.T) {
	store := newStore(t)
	ledger := store.StockLedger()

	if _, err := ledger.FinalizeReceipt(context.Background(), shippedTransfer("ghost"), 10); err == nil {
		t.Error("finalizing without a reservation must fail")
	}
}

func TestRelease(t *testing.T) {
	store := newStore(t)
	ledger := store.StockLedger()
	ctx := context.Background()

	transfer := shippedTransfer("tr-1")
	if _, err := ledger.Reserve(ctx, transfer); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	if err := ledger.Release(ctx, transfer); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// Reserved quantity flows back to the source.
	if n := countMovements(t, store, "tr-1", "in"); n != 1 {
		t.Errorf("inbound movements = %d, want 1", n)
	}

	var state string
	if err := store.DB().QueryRow(
		`SELECT state FROM stock_reservations WHERE transfer_id = ?`, "tr-1",
	).Scan(&state); err != nil {
		t.Fatalf("reading reservation state: %v", err)
	}
	if state != "released" {
		t.Errorf("state = %q, want released", state)
	}

	// Repeating is a no-op.
	if err := ledger.Release(ctx, transfer); err != nil {
		t.Fatalf("repeated Release: %v", err)
	}
	if n := countMovements(t, store, "tr-1", "in"); n != 1 {
		t.Errorf("inbound movements after repeat = %d, want 1", n)
	}
}

func TestReleaseWithoutReservation(t *testing.T) {
	store := newStore(t)
	ledger := store.StockLedger()

	// Cancelling a transfer that never shipped has nothing to release.
	if err := ledger.Release(context.Background(), shippedTransfer("ghost")); err != nil {
		t.Fatalf("Release without reservation: %v", err)
	}
}

func TestReleaseAfterFinalizeIsNoop(t *testing.T) {
	store := newStore(t)
	ledger := store.StockLedger()
	ctx := context.Background()

	transfer := shippedTransfer("tr-1")
	if _, err := ledger.Reserve(ctx, transfer); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := ledger.FinalizeReceipt(ctx, transfer, 50); err != nil {
		t.Fatalf("FinalizeReceipt: %v", err)
	}

	if err := ledger.Release(ctx, transfer); err != nil {
		t.Fatalf("Release after finalize: %v", err)
	}
	// Only the receipt's inbound movement exists.
	if n := countMovements(t, store, "tr-1", "in"); n != 1 {
		t.Errorf("inbound movements = %d, want 1", n)
	}
}
