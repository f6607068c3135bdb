package domain

import "time"

// Status represents the lifecycle state of a transfer.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusApproved  Status = "APPROVED"
	StatusShipped   Status = "SHIPPED"
	StatusReceived  Status = "RECEIVED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no further transitions exist out of s.
func (s Status) Terminal() bool {
	return s == StatusReceived || s == StatusCancelled
}

// Priority is set at creation and never changes. EMERGENCY transfers
// take the escalation path instead of the standard request notification.
type Priority string

const (
	PriorityNormal    Priority = "NORMAL"
	PriorityHigh      Priority = "HIGH"
	PriorityEmergency Priority = "EMERGENCY"
)

// ValidPriority reports whether p is one of the three known priorities.
func ValidPriority(p Priority) bool {
	return p == PriorityNormal || p == PriorityHigh || p == PriorityEmergency
}

// Event represents an action that triggers a state transition.
type Event string

const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventShip    Event = "ship"
	EventReceive Event = "receive"
	EventCancel  Event = "cancel"
)

// Transition defines a valid state change: an event moves a transfer from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes in the transfer lifecycle.
// RECEIVED and CANCELLED are terminal: no entry leaves them. This is
// domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventApprove, Src: StatusRequested, Dst: StatusApproved},
	{Event: EventReject, Src: StatusRequested, Dst: StatusCancelled},
	{Event: EventShip, Src: StatusApproved, Dst: StatusShipped},
	{Event: EventReceive, Src: StatusShipped, Dst: StatusReceived},
	{Event: EventCancel, Src: StatusRequested, Dst: StatusCancelled},
	{Event: EventCancel, Src: StatusApproved, Dst: StatusCancelled},
}

// Transfer is the core domain entity: a request to move a quantity of one
// product from a source location to a destination location within a tenant.
//
// The JSON tags define the audit snapshot shape; see Snapshot in audit.go.
type Transfer struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`

	ProductID             string `json:"product_id"`
	SourceLocationID      string `json:"source_location_id"`
	DestinationLocationID string `json:"destination_location_id"`

	QuantityRequested int `json:"quantity_requested"`
	QuantityShipped   int `json:"quantity_shipped"`
	QuantityReceived  int `json:"quantity_received"`

	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`

	RequestedBy string     `json:"requested_by"`
	RequestedAt time.Time  `json:"requested_at"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ShippedBy   string     `json:"shipped_by,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	ReceivedBy  string     `json:"received_by,omitempty"`
	ReceivedAt  *time.Time `json:"received_at,omitempty"`
	CancelledBy string     `json:"cancelled_by,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty"`
	VarianceReason     string `json:"variance_reason,omitempty"`
	DamageReport       string `json:"damage_report,omitempty"`
	Notes              string `json:"notes,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewTransfer creates a transfer in the initial REQUESTED state.
// Input validation (positive quantity, distinct locations) belongs to
// the service; this constructor only establishes the initial shape.
func NewTransfer(id, tenantID, productID, sourceID, destinationID string, quantity int, priority Priority, requestedBy, notes string) Transfer {
	now := time.Now().UTC()
	return Transfer{
		ID:                    id,
		TenantID:              tenantID,
		ProductID:             productID,
		SourceLocationID:      sourceID,
		DestinationLocationID: destinationID,
		QuantityRequested:     quantity,
		Status:                StatusRequested,
		Priority:              priority,
		RequestedBy:           requestedBy,
		RequestedAt:           now,
		Notes:                 notes,
		UpdatedAt:             now,
	}
}

// Role is the capability level of a user within a tenant.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// User is a tenant-scoped actor resolved by the Directory port.
type User struct {
	ID         string
	TenantID   string
	Name       string
	Role       Role
	LocationID string
}

// Location is a tenant-scoped site (restaurant, commissary, warehouse).
type Location struct {
	ID       string
	TenantID string
	Name     string
}

// Product is a tenant-scoped inventory item.
type Product struct {
	ID       string
	TenantID string
	Name     string
	SKU      string
}
