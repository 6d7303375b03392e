package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mpwebhook "github.com/lucasmv/zapflow-backend/internal/webhooks/mercadopago"
)

type stubReconciler struct {
	outcome  mpwebhook.Outcome
	err      error
	gotEvent mpwebhook.Event
	calls    int
}

func (s *stubReconciler) HandleEvent(_ context.Context, event mpwebhook.Event) (mpwebhook.Outcome, error) {
	s.calls++
	s.gotEvent = event
	return s.outcome, s.err
}

func assertReceived(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var payload map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload["received"] {
		t.Fatalf("expected received=true got %v", payload)
	}
}

func TestMercadoPagoWebhookBodyEvent(t *testing.T) {
	svc := &stubReconciler{outcome: mpwebhook.OutcomePaid}
	handler := MercadoPagoWebhook(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"type":"payment","data":{"id":987654}}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assertReceived(t, rec)
	if svc.gotEvent.Type != "payment" {
		t.Fatalf("expected payment type got %q", svc.gotEvent.Type)
	}
	if svc.gotEvent.PaymentID != "987654" {
		t.Fatalf("expected payment id 987654 got %q", svc.gotEvent.PaymentID)
	}
}

func TestMercadoPagoWebhookQueryEvent(t *testing.T) {
	svc := &stubReconciler{outcome: mpwebhook.OutcomePaid}
	handler := MercadoPagoWebhook(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook?type=payment&data.id=123456", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assertReceived(t, rec)
	if svc.gotEvent.PaymentID != "123456" {
		t.Fatalf("expected payment id from query got %q", svc.gotEvent.PaymentID)
	}
}

func TestMercadoPagoWebhookAcksOnFailure(t *testing.T) {
	svc := &stubReconciler{outcome: mpwebhook.OutcomeError, err: errors.New("provider down")}
	handler := MercadoPagoWebhook(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"type":"payment","data":{"id":"55"}}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assertReceived(t, rec)
}

func TestMercadoPagoWebhookAcksUnknownPayload(t *testing.T) {
	svc := &stubReconciler{outcome: mpwebhook.OutcomeIgnored}
	handler := MercadoPagoWebhook(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assertReceived(t, rec)
	if svc.calls != 1 {
		t.Fatalf("reconciler should still see the empty event")
	}
}
