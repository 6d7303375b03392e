package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lucasmv/zapflow-backend/api/responses"
	"github.com/lucasmv/zapflow-backend/api/validators"
	"github.com/lucasmv/zapflow-backend/internal/board"
	"github.com/lucasmv/zapflow-backend/internal/catalog"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
	"github.com/lucasmv/zapflow-backend/pkg/metrics"
)

// BoardSnapshot returns the current kanban state for one store: every active
// order plus the orders delivered today.
func BoardSnapshot(svc board.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "board service unavailable"))
			return
		}

		company, err := catalogSvc.ResolveCompany(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.Snapshot(r.Context(), company.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

// BoardAdvance moves one order a single step forward in the fulfillment flow.
func BoardAdvance(svc board.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "board service unavailable"))
			return
		}

		company, err := catalogSvc.ResolveCompany(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Advance(r.Context(), company.ID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// BoardStream pushes board events for one store over SSE. Each connection
// opens with a full snapshot so clients resync anything missed while
// disconnected, then receives live events until the client goes away.
func BoardStream(svc board.Service, catalogSvc catalog.Service, sub board.Subscriber, heartbeat time.Duration, m *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || catalogSvc == nil || sub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "board stream unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		company, err := catalogSvc.ResolveCompany(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Subscribe before the snapshot so nothing falls in the gap
		// between the two.
		events, cancel, err := sub.Subscribe(r.Context(), company.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe board events"))
			return
		}
		defer cancel()

		snapshot, err := svc.Snapshot(r.Context(), company.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		if m != nil {
			m.StreamOpened()
			defer m.StreamClosed()
		}

		writeSSE(w, "snapshot", snapshot)
		flusher.Flush()

		if heartbeat <= 0 {
			heartbeat = 25 * time.Second
		}
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				fmt.Fprint(w, ": heartbeat\n\n")
				flusher.Flush()
			case event, open := <-events:
				if !open {
					return
				}
				writeSSE(w, string(event.Kind), event.Order)
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
