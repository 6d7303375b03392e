package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucasmv/zapflow-backend/api/responses"
	"github.com/lucasmv/zapflow-backend/internal/catalog"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
)

// Storefront serves the public menu for one store slug.
func Storefront(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		slug := chi.URLParam(r, "slug")
		storefront, err := svc.GetStorefront(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, storefront)
	}
}
