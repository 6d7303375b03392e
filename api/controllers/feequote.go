package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lucasmv/zapflow-backend/api/responses"
	"github.com/lucasmv/zapflow-backend/api/validators"
	"github.com/lucasmv/zapflow-backend/internal/catalog"
	"github.com/lucasmv/zapflow-backend/internal/deliveryfee"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
)

type feeQuoter interface {
	Quote(ctx context.Context, company *models.Company, customerCEP string) (deliveryfee.Quote, error)
}

type feeQuoteRequest struct {
	CEP string `json:"cep" validate:"required"`
}

type feeQuoteResponse struct {
	Fee        decimal.Decimal `json:"fee"`
	Tier       string          `json:"tier"`
	DistanceKm *float64        `json:"distance_km,omitempty"`
}

// FeeQuote prices delivery to a CEP before the customer commits to checkout.
func FeeQuote(catalogSvc catalog.Service, fees feeQuoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil || fees == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fee quote service unavailable"))
			return
		}

		slug := chi.URLParam(r, "slug")
		company, err := catalogSvc.ResolveCompany(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload feeQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := fees.Quote(r.Context(), company, payload.CEP)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, feeQuoteResponse{
			Fee:        quote.Fee,
			Tier:       string(quote.Tier),
			DistanceKm: quote.DistanceKm,
		})
	}
}
