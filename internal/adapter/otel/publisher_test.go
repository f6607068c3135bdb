package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"

	adapter "github.com/mesaops/stockshift/internal/adapter/otel"
	"github.com/mesaops/stockshift/internal/domain"
)

type stubNotifier struct {
	err error
}

func (n *stubNotifier) Notify(context.Context, domain.Action, domain.Transfer, string) error {
	return n.err
}

type stubAlerter struct {
	err error
}

func (a *stubAlerter) TriggerAlert(context.Context, domain.Transfer, domain.VarianceReport) error {
	return a.err
}

func TestTracingNotifier_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	notifier := adapter.NewTracingNotifier(&stubNotifier{})

	transfer := sampleTransfer("tr-1", "tenant-1")
	if err := notifier.Notify(context.Background(), domain.ActionApproved, transfer, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "Notifier.Notify" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	assertAttribute(t, spans[0], "notification.action", "APPROVED")
	assertAttribute(t, spans[0], "transfer.id", "tr-1")
}

func TestTracingNotifier_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	notifier := adapter.NewTracingNotifier(&stubNotifier{err: errors.New("queue full")})

	transfer := sampleTransfer("tr-1", "tenant-1")
	if err := notifier.Notify(context.Background(), domain.ActionApproved, transfer, "user-1"); err == nil {
		t.Fatal("expected error to pass through")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want error", spans[0].Status.Code)
	}
}

func TestTracingAlerter_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	alerter := adapter.NewTracingAlerter(&stubAlerter{})

	transfer := sampleTransfer("tr-1", "tenant-1")
	report := domain.VarianceReport{Variance: 6, Percent: 6, AlertTriggered: true}
	if err := alerter.TriggerAlert(context.Background(), transfer, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "VarianceAlerter.TriggerAlert" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	assertAttribute(t, spans[0], "variance.units", "6")
}
