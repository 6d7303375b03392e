package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/lucasmv/zapflow-backend/api/responses"
	mpwebhook "github.com/lucasmv/zapflow-backend/internal/webhooks/mercadopago"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
)

// PaymentReconciler is the slice of the webhook service the handler needs.
type PaymentReconciler interface {
	HandleEvent(ctx context.Context, event mpwebhook.Event) (mpwebhook.Outcome, error)
}

const maxWebhookBody = 64 * 1024

type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// MercadoPagoWebhook receives payment callbacks. The callback body is never
// trusted; the reconciler re-fetches the payment with the tenant's own
// credentials. The response is always 200 so Mercado Pago stops retrying,
// even when the event is unknown or processing failed. Failed events come
// back on the next retry or surface on the board resync.
func MercadoPagoWebhook(svc PaymentReconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		event := parseEvent(r)
		if svc != nil {
			outcome, err := svc.HandleEvent(ctx, event)
			if err != nil && logg != nil {
				logCtx := logg.WithFields(ctx, map[string]any{
					"payment_id": event.PaymentID,
					"outcome":    string(outcome),
					"error":      err.Error(),
				})
				logg.Warn(logCtx, "webhook event failed")
			}
		}

		responses.WriteRaw(w, http.StatusOK, map[string]bool{"received": true})
	}
}

// parseEvent pulls the event type and payment id from the JSON body, falling
// back to the query string form Mercado Pago uses for some topics.
func parseEvent(r *http.Request) mpwebhook.Event {
	var payload webhookPayload
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err == nil && len(body) > 0 {
		_ = json.Unmarshal(body, &payload)
	}

	event := mpwebhook.Event{
		Type:      payload.Type,
		PaymentID: payload.Data.ID.String(),
	}

	if event.PaymentID == "" {
		query := r.URL.Query()
		event.PaymentID = query.Get("data.id")
		if event.PaymentID == "" {
			event.PaymentID = query.Get("id")
		}
		if event.Type == "" {
			event.Type = query.Get("type")
			if event.Type == "" {
				event.Type = query.Get("topic")
			}
		}
	}

	return event
}
