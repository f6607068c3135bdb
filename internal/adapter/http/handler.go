package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mesaops/stockshift/internal/app"
	"github.com/mesaops/stockshift/internal/domain"
)

// TransferResponse is the API representation of a transfer.
type TransferResponse struct {
	ID                    string `json:"id" doc:"Unique identifier"`
	TenantID              string `json:"tenant_id" doc:"Owning tenant"`
	ProductID             string `json:"product_id" doc:"Product being moved"`
	SourceLocationID      string `json:"source_location_id" doc:"Location stock leaves"`
	DestinationLocationID string `json:"destination_location_id" doc:"Location stock arrives at"`
	QuantityRequested     int    `json:"quantity_requested" doc:"Units requested"`
	QuantityShipped       int    `json:"quantity_shipped" doc:"Units shipped"`
	QuantityReceived      int    `json:"quantity_received" doc:"Units received"`
	Status                string `json:"status" doc:"Lifecycle state"`
	Priority              string `json:"priority" doc:"Request priority"`
	RequestedBy           string `json:"requested_by" doc:"Requesting user"`
	RequestedAt           string `json:"requested_at" doc:"Request timestamp (ISO 8601)"`
	ApprovedBy            string `json:"approved_by,omitempty" doc:"Approving user"`
	ApprovedAt            string `json:"approved_at,omitempty" doc:"Approval timestamp"`
	ShippedBy             string `json:"shipped_by,omitempty" doc:"Shipping user"`
	ShippedAt             string `json:"shipped_at,omitempty" doc:"Shipment timestamp"`
	ReceivedBy            string `json:"received_by,omitempty" doc:"Receiving user"`
	ReceivedAt            string `json:"received_at,omitempty" doc:"Receipt timestamp"`
	CancelledBy           string `json:"cancelled_by,omitempty" doc:"Cancelling user"`
	CancelledAt           string `json:"cancelled_at,omitempty" doc:"Cancellation timestamp"`
	CancellationReason    string `json:"cancellation_reason,omitempty" doc:"Why the transfer was cancelled or rejected"`
	VarianceReason        string `json:"variance_reason,omitempty" doc:"Explanation for a shipped/received mismatch"`
	DamageReport          string `json:"damage_report,omitempty" doc:"Damage noted at receipt"`
	Notes                 string `json:"notes,omitempty" doc:"Free-form notes"`
	UpdatedAt             string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func toTransferResponse(t domain.Transfer) TransferResponse {
	return TransferResponse{
		ID:                    t.ID,
		TenantID:              t.TenantID,
		ProductID:             t.ProductID,
		SourceLocationID:      t.SourceLocationID,
		DestinationLocationID: t.DestinationLocationID,
		QuantityRequested:     t.QuantityRequested,
		QuantityShipped:       t.QuantityShipped,
		QuantityReceived:      t.QuantityReceived,
		Status:                string(t.Status),
		Priority:              string(t.Priority),
		RequestedBy:           t.RequestedBy,
		RequestedAt:           formatTime(t.RequestedAt),
		ApprovedBy:            t.ApprovedBy,
		ApprovedAt:            formatTimePtr(t.ApprovedAt),
		ShippedBy:             t.ShippedBy,
		ShippedAt:             formatTimePtr(t.ShippedAt),
		ReceivedBy:            t.ReceivedBy,
		ReceivedAt:            formatTimePtr(t.ReceivedAt),
		CancelledBy:           t.CancelledBy,
		CancelledAt:           formatTimePtr(t.CancelledAt),
		CancellationReason:    t.CancellationReason,
		VarianceReason:        t.VarianceReason,
		DamageReport:          t.DamageReport,
		Notes:                 t.Notes,
		UpdatedAt:             formatTime(t.UpdatedAt),
	}
}

// AuditEntryResponse is the API representation of one audit ledger entry.
type AuditEntryResponse struct {
	ID          string `json:"id" doc:"Entry identifier"`
	Action      string `json:"action" doc:"What happened"`
	OldStatus   string `json:"old_status,omitempty" doc:"Status before the mutation"`
	NewStatus   string `json:"new_status" doc:"Status after the mutation"`
	OldValues   string `json:"old_values,omitempty" doc:"JSON snapshot before the mutation"`
	NewValues   string `json:"new_values" doc:"JSON snapshot after the mutation"`
	PerformedBy string `json:"performed_by" doc:"Acting user"`
	PerformedAt string `json:"performed_at" doc:"When (ISO 8601)"`
	Notes       string `json:"notes,omitempty" doc:"Operation context"`
}

func toAuditEntryResponse(e domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:          e.ID,
		Action:      string(e.Action),
		OldStatus:   string(e.OldStatus),
		NewStatus:   string(e.NewStatus),
		OldValues:   e.OldValues,
		NewValues:   e.NewValues,
		PerformedBy: e.PerformedBy,
		PerformedAt: formatTime(e.PerformedAt),
		Notes:       e.Notes,
	}
}

// TenantHeaders are required on every operation. Authentication happens
// upstream; these headers carry the already-authenticated identity.
type TenantHeaders struct {
	TenantID string `header:"X-Tenant-ID" doc:"Tenant the request acts within"`
	ActorID  string `header:"X-Actor-ID" doc:"Authenticated user performing the request"`
}

// --- Create ---

type CreateTransferInput struct {
	TenantHeaders
	Body struct {
		ProductID             string `json:"product_id" minLength:"1" doc:"Product to move"`
		SourceLocationID      string `json:"source_location_id" minLength:"1" doc:"Location stock leaves"`
		DestinationLocationID string `json:"destination_location_id" minLength:"1" doc:"Location stock arrives at"`
		Quantity              int    `json:"quantity" doc:"Units to move"`
		Priority              string `json:"priority,omitempty" enum:"NORMAL,HIGH,EMERGENCY" default:"NORMAL" doc:"Request priority"`
		Notes                 string `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

type CreateTransferOutput struct {
	Body TransferResponse
}

// --- Get details ---

type GetTransferInput struct {
	TenantHeaders
	ID string `path:"id" doc:"Transfer ID"`
}

type GetTransferOutput struct {
	Body struct {
		Transfer   TransferResponse     `json:"transfer"`
		AuditTrail []AuditEntryResponse `json:"audit_trail" doc:"Full mutation history, oldest first"`
	}
}

// --- List ---

type ListTransfersInput struct {
	TenantHeaders
	LocationID string `query:"location_id" required:"false" doc:"Filter by source or destination location"`
	Status     string `query:"status" required:"false" doc:"Filter by lifecycle state"`
	Limit      int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset     int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListTransfersOutput struct {
	Body []TransferResponse
}

// --- Transitions ---

type ApproveInput struct {
	TenantHeaders
	ID   string `path:"id" doc:"Transfer ID"`
	Body struct {
		Notes string `json:"notes,omitempty" doc:"Approval context"`
	}
}

type ReasonInput struct {
	TenantHeaders
	ID   string `path:"id" doc:"Transfer ID"`
	Body struct {
		Reason string `json:"reason" minLength:"1" doc:"Why the transfer is being stopped"`
	}
}

type ShipInput struct {
	TenantHeaders
	ID   string `path:"id" doc:"Transfer ID"`
	Body struct {
		Notes string `json:"notes,omitempty" doc:"Shipment context"`
	}
}

type ReceiveInput struct {
	TenantHeaders
	ID   string `path:"id" doc:"Transfer ID"`
	Body struct {
		QuantityReceived int    `json:"quantity_received" doc:"Units that actually arrived"`
		ReceivedAt       string `json:"received_at,omitempty" format:"date-time" doc:"Receipt time; defaults to now"`
		VarianceReason   string `json:"variance_reason,omitempty" doc:"Explanation when received differs from shipped"`
		DamageReport     string `json:"damage_report,omitempty" doc:"Damage noted at receipt"`
		Notes            string `json:"notes,omitempty" doc:"Receipt context"`
	}
}

type TransitionOutput struct {
	Body TransferResponse
}

// --- Update ---

type UpdateTransferInput struct {
	TenantHeaders
	ID   string `path:"id" doc:"Transfer ID"`
	Body struct {
		Quantity *int    `json:"quantity,omitempty" doc:"New requested quantity"`
		Notes    *string `json:"notes,omitempty" doc:"New notes"`
	}
}

// Register adds all transfer API routes to the Huma API.
func Register(api huma.API, svc *app.TransferService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-transfer",
		Method:      http.MethodPost,
		Path:        "/api/v1/transfers",
		Summary:     "Request a transfer",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *CreateTransferInput) (*CreateTransferOutput, error) {
		transfer, err := svc.Create(ctx, app.CreateInput{
			TenantID:              input.TenantID,
			ActorID:               input.ActorID,
			ProductID:             input.Body.ProductID,
			SourceLocationID:      input.Body.SourceLocationID,
			DestinationLocationID: input.Body.DestinationLocationID,
			Quantity:              input.Body.Quantity,
			Priority:              domain.Priority(input.Body.Priority),
			Notes:                 input.Body.Notes,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateTransferOutput{Body: toTransferResponse(transfer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-transfer",
		Method:      http.MethodGet,
		Path:        "/api/v1/transfers/{id}",
		Summary:     "Get a transfer and its audit trail",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *GetTransferInput) (*GetTransferOutput, error) {
		details, err := svc.Details(ctx, input.TenantID, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &GetTransferOutput{}
		out.Body.Transfer = toTransferResponse(details.Transfer)
		out.Body.AuditTrail = make([]AuditEntryResponse, len(details.AuditTrail))
		for i, e := range details.AuditTrail {
			out.Body.AuditTrail[i] = toAuditEntryResponse(e)
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-transfers",
		Method:      http.MethodGet,
		Path:        "/api/v1/transfers",
		Summary:     "List transfers by location or status",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *ListTransfersInput) (*ListTransfersOutput, error) {
		filter := domain.ListFilter{Limit: input.Limit, Offset: input.Offset}

		var transfers []domain.Transfer
		var err error
		switch {
		case input.LocationID != "":
			if input.Status != "" {
				s := domain.Status(input.Status)
				filter.Status = &s
			}
			transfers, err = svc.ForLocation(ctx, input.TenantID, input.LocationID, filter)
		case input.Status != "":
			transfers, err = svc.ByStatus(ctx, input.TenantID, domain.Status(input.Status), filter)
		default:
			return nil, huma.Error422UnprocessableEntity("either location_id or status is required")
		}
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]TransferResponse, len(transfers))
		for i, t := range transfers {
			resp[i] = toTransferResponse(t)
		}
		return &ListTransfersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "approve-transfer",
		Method:      http.MethodPost,
		Path:        "/api/v1/transfers/{id}/approve",
		Summary:     "Approve a requested transfer",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *ApproveInput) (*TransitionOutput, error) {
		transfer, err := svc.Approve(ctx, input.TenantID, input.ID, input.ActorID, input.Body.Notes)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransitionOutput{Body: toTransferResponse(transfer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-transfer",
		Method:      http.MethodPost,
		Path:        "/api/v1/transfers/{id}/reject",
		Summary:     "Reject a requested transfer",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *ReasonInput) (*TransitionOutput, error) {
		transfer, err := svc.Reject(ctx, input.TenantID, input.ID, input.ActorID, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransitionOutput{Body: toTransferResponse(transfer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ship-transfer",
		Method:      http.MethodPost,
		Path:        "/api/v1/transfers/{id}/ship",
		Summary:     "Ship an approved transfer",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *ShipInput) (*TransitionOutput, error) {
		transfer, err := svc.Ship(ctx, input.TenantID, input.ID, input.ActorID, input.Body.Notes)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransitionOutput{Body: toTransferResponse(transfer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "receive-transfer",
		Method:      http.MethodPost,
		Path:        "/api/v1/transfers/{id}/receive",
		Summary:     "Receive a shipped transfer",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *ReceiveInput) (*TransitionOutput, error) {
		in := app.ReceiveInput{
			TenantID:         input.TenantID,
			TransferID:       input.ID,
			ActorID:          input.ActorID,
			QuantityReceived: input.Body.QuantityReceived,
			VarianceReason:   input.Body.VarianceReason,
			DamageReport:     input.Body.DamageReport,
			Notes:            input.Body.Notes,
		}
		if input.Body.ReceivedAt != "" {
			at, err := time.Parse(time.RFC3339, input.Body.ReceivedAt)
			if err != nil {
				return nil, huma.Error422UnprocessableEntity("received_at must be an RFC 3339 timestamp")
			}
			in.ReceivedAt = at
		}

		transfer, err := svc.Receive(ctx, in)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransitionOutput{Body: toTransferResponse(transfer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-transfer",
		Method:      http.MethodPost,
		Path:        "/api/v1/transfers/{id}/cancel",
		Summary:     "Cancel a pending or approved transfer",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *ReasonInput) (*TransitionOutput, error) {
		transfer, err := svc.Cancel(ctx, input.TenantID, input.ID, input.ActorID, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransitionOutput{Body: toTransferResponse(transfer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-transfer",
		Method:      http.MethodPatch,
		Path:        "/api/v1/transfers/{id}",
		Summary:     "Edit a pending transfer request",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *UpdateTransferInput) (*TransitionOutput, error) {
		transfer, err := svc.Update(ctx, input.TenantID, input.ID, input.ActorID, app.UpdateInput{
			QuantityRequested: input.Body.Quantity,
			Notes:             input.Body.Notes,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransitionOutput{Body: toTransferResponse(transfer)}, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return huma.Error404NotFound(notFound.Error())
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return huma.Error422UnprocessableEntity(validation.Error())
	}

	var transition *domain.TransitionError
	if errors.As(err, &transition) {
		return huma.Error422UnprocessableEntity(transition.Error())
	}

	var authz *domain.AuthorizationError
	if errors.As(err, &authz) {
		return huma.Error403Forbidden(authz.Error())
	}

	var conflict *domain.ConcurrentModificationError
	if errors.As(err, &conflict) {
		return huma.Error409Conflict(conflict.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
