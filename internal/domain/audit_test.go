package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/mesaops/stockshift/internal/domain"
)

func TestSnapshot_RoundTripsThroughTransferType(t *testing.T) {
	tr := domain.NewTransfer("tr-1", "tn-1", "p-1", "l-1", "l-2", 25, domain.PriorityHigh, "u-1", "")
	tr.Status = domain.StatusApproved

	var decoded domain.Transfer
	if err := json.Unmarshal([]byte(domain.Snapshot(tr)), &decoded); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}

	if decoded.ID != "tr-1" {
		t.Errorf("ID = %q, want %q", decoded.ID, "tr-1")
	}
	if decoded.Status != domain.StatusApproved {
		t.Errorf("Status = %q, want %q", decoded.Status, domain.StatusApproved)
	}
	if decoded.QuantityRequested != 25 {
		t.Errorf("QuantityRequested = %d, want 25", decoded.QuantityRequested)
	}
}

func TestSnapshot_OmitsUnsetOptionalFields(t *testing.T) {
	tr := domain.NewTransfer("tr-1", "tn-1", "p-1", "l-1", "l-2", 25, domain.PriorityNormal, "u-1", "")

	var raw map[string]any
	if err := json.Unmarshal([]byte(domain.Snapshot(tr)), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"approved_at", "received_at", "cancelled_at", "cancellation_reason", "variance_reason"} {
		if _, present := raw[key]; present {
			t.Errorf("snapshot of a new transfer should omit %q", key)
		}
	}
}
