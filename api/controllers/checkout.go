package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucasmv/zapflow-backend/api/responses"
	"github.com/lucasmv/zapflow-backend/api/validators"
	checkoutsvc "github.com/lucasmv/zapflow-backend/internal/checkout"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
)

// Checkout places an order against the store addressed by the slug. The
// response carries the accepted order and, for PIX submissions, either the
// charge data or the reason the charge could not be created.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		slug := chi.URLParam(r, "slug")

		var payload checkoutsvc.PlaceOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmation, err := svc.PlaceOrder(r.Context(), slug, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}
