package domain

import (
	"encoding/json"
	"time"
)

// Action tags an audit entry with the operation that produced it.
type Action string

const (
	ActionCreated   Action = "CREATED"
	ActionApproved  Action = "APPROVED"
	ActionRejected  Action = "REJECTED"
	ActionShipped   Action = "SHIPPED"
	ActionReceived  Action = "RECEIVED"
	ActionCancelled Action = "CANCELLED"
	ActionUpdated   Action = "UPDATED"
)

// AuditEntry is one append-only record of a transfer mutation.
//
// Invariants:
//   - Append-only: entries are never updated or deleted.
//   - OldStatus is empty only for the CREATED entry.
//   - Per transfer, each entry's OldStatus equals the previous entry's
//     NewStatus, so the ordered chain reconstructs the full lifecycle.
type AuditEntry struct {
	ID         string
	TenantID   string
	TransferID string
	Action     Action
	OldStatus  Status // empty for CREATED
	NewStatus  Status
	OldValues  string // JSON snapshot of the transfer before the mutation, empty for CREATED
	NewValues  string // JSON snapshot after the mutation
	PerformedBy string
	PerformedAt time.Time
	Notes       string
}

// Snapshot serializes a transfer for the OldValues/NewValues columns.
// Serializing the concrete Transfer type keeps the snapshot shape in
// lockstep with the entity schema. Marshalling a Transfer cannot fail,
// so the error is discarded.
func Snapshot(t Transfer) string {
	b, _ := json.Marshal(t)
	return string(b)
}
