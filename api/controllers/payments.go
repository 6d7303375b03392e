package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmv/zapflow-backend/api/responses"
	"github.com/lucasmv/zapflow-backend/api/validators"
	"github.com/lucasmv/zapflow-backend/internal/payments"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
)

type companyLookup interface {
	FindCompanyByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type orderLookup interface {
	FindForCompany(ctx context.Context, companyID, id uuid.UUID) (*models.Order, error)
}

type pixIntentRequest struct {
	OrderID   uuid.UUID       `json:"orderId" validate:"required"`
	CompanyID uuid.UUID       `json:"companyId" validate:"required"`
	Total     decimal.Decimal `json:"total"`
}

// CreatePixIntent creates (or re-creates after a lost response) the PIX
// charge for an accepted order. The idempotency key pins the charge to the
// order, so retries return the same payment. The stored order total is
// authoritative; the client-sent total is only checked for drift.
func CreatePixIntent(svc payments.Service, companies companyLookup, ordersRepo orderLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || companies == nil || ordersRepo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload pixIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := companies.FindCompanyByID(r.Context(), payload.CompanyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := ordersRepo.FindForCompany(r.Context(), company.ID, payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil && !payload.Total.IsZero() && !payload.Total.Equal(order.TotalPrice) {
			warnCtx := logg.WithFields(r.Context(), map[string]any{
				"order_id":     order.ID.String(),
				"client_total": payload.Total.String(),
				"order_total":  order.TotalPrice.String(),
			})
			logg.Warn(warnCtx, "pix.total_mismatch")
		}

		intent, err := svc.CreateIntent(r.Context(), company, order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}
