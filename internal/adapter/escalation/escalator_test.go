package escalation

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mesaops/stockshift/internal/domain"
)

type captureNotifier struct {
	actions []domain.Action
	err     error
}

func (n *captureNotifier) Notify(_ context.Context, action domain.Action, _ domain.Transfer, _ string) error {
	if n.err != nil {
		return n.err
	}
	n.actions = append(n.actions, action)
	return nil
}

func TestEscalate(t *testing.T) {
	notifier := &captureNotifier{}
	esc := New(notifier, slog.New(slog.DiscardHandler))

	transfer := domain.NewTransfer("tr-1", "tenant-1", "prod-1", "loc-a", "loc-b", 10, domain.PriorityEmergency, "user-1", "")

	result, err := esc.Escalate(context.Background(), transfer, "user-1")
	if err != nil {
		t.Fatalf("Escalate: %v", err)
	}

	if result.AutoApproved {
		t.Error("emergency requests must not auto-approve")
	}
	if !result.Expedited {
		t.Error("expected expedited handling")
	}
	if result.ProcessingTimeMinutes != defaultProcessingTimeMinutes {
		t.Errorf("processing time = %d, want %d", result.ProcessingTimeMinutes, defaultProcessingTimeMinutes)
	}
	if len(notifier.actions) != 1 || notifier.actions[0] != domain.ActionCreated {
		t.Errorf("notifier actions = %v, want one CREATED page", notifier.actions)
	}
}

func TestEscalateNotifierFailure(t *testing.T) {
	notifier := &captureNotifier{err: errors.New("pager down")}
	esc := New(notifier, slog.New(slog.DiscardHandler))

	transfer := domain.NewTransfer("tr-1", "tenant-1", "prod-1", "loc-a", "loc-b", 10, domain.PriorityEmergency, "user-1", "")

	if _, err := esc.Escalate(context.Background(), transfer, "user-1"); err == nil {
		t.Error("expected the notifier failure to surface to the caller")
	}
}
