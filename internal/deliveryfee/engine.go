package deliveryfee

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/geocode"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
	"github.com/lucasmv/zapflow-backend/pkg/metrics"
	"github.com/lucasmv/zapflow-backend/pkg/osrm"
	"github.com/lucasmv/zapflow-backend/pkg/types"
)

// Tier labels which pricing rule produced a quote.
type Tier string

const (
	// TierBase means the customer sits within the store's base radius.
	TierBase Tier = "base"
	// TierExtra means a resolved route put the customer beyond the radius.
	TierExtra Tier = "extra"
	// TierFallback means distance could not be established. The fee is the
	// base fee when the store itself has no coordinates, the extra fee
	// otherwise: an unknown distance never under-charges.
	TierFallback Tier = "fallback"
)

// Geocoder resolves a CEP to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, cep string) (*geocode.Result, error)
}

// Router computes a driving route between two points.
type Router interface {
	DrivingRoute(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*osrm.Route, error)
}

// Quote is a priced delivery estimate. DistanceKm is set only when a route
// was actually computed.
type Quote struct {
	Fee        decimal.Decimal
	Tier       Tier
	DistanceKm *float64
}

// Engine prices deliveries from the store location to a customer CEP. A quote
// never fails the caller's flow: every degradation path resolves to a fee.
type Engine struct {
	geocoder Geocoder
	router   Router
	logger   *logger.Logger
	metrics  *metrics.StorefrontMetrics
}

// NewEngine builds the fee engine.
func NewEngine(geocoder Geocoder, router Router, logg *logger.Logger, m *metrics.StorefrontMetrics) *Engine {
	return &Engine{
		geocoder: geocoder,
		router:   router,
		logger:   logg,
		metrics:  m,
	}
}

// Quote resolves the delivery fee for one company and customer CEP.
//
// Resolution order:
//  1. store without coordinates: base fee, fallback tier
//  2. blank CEP, geocode or routing failure: extra fee, fallback tier
//  3. routed distance within base radius: base fee, otherwise extra fee
func (e *Engine) Quote(ctx context.Context, company *models.Company, customerCEP string) (Quote, error) {
	if e == nil {
		return Quote{}, pkgerrors.New(pkgerrors.CodeInternal, "fee engine not configured")
	}
	if company == nil {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "company is required")
	}

	rule := company.DeliveryRule
	if rule.IsZero() {
		rule = types.DefaultDeliveryRule()
	}

	if !company.HasCoordinates() {
		return e.resolve(ctx, Quote{Fee: rule.BaseFee, Tier: TierFallback}), nil
	}

	cep := strings.TrimSpace(customerCEP)
	if cep == "" {
		return e.resolve(ctx, Quote{Fee: rule.ExtraFee, Tier: TierFallback}), nil
	}

	geo, err := e.geocoder.Lookup(ctx, cep)
	if err != nil || geo == nil || !geo.HasCoordinates() {
		if err != nil {
			e.warn(ctx, "cep geocoding failed, charging fallback fee", err)
		}
		return e.resolve(ctx, Quote{Fee: rule.ExtraFee, Tier: TierFallback}), nil
	}

	route, err := e.router.DrivingRoute(ctx, *company.Lat, *company.Lng, geo.Lat, geo.Lng)
	if err != nil {
		e.warn(ctx, "routing failed, charging fallback fee", err)
		return e.resolve(ctx, Quote{Fee: rule.ExtraFee, Tier: TierFallback}), nil
	}

	km := route.DistanceKm()
	quote := Quote{Fee: rule.ExtraFee, Tier: TierExtra, DistanceKm: &km}
	if decimal.NewFromFloat(km).LessThanOrEqual(rule.BaseKm) {
		quote.Fee = rule.BaseFee
		quote.Tier = TierBase
	}
	return e.resolve(ctx, quote), nil
}

func (e *Engine) resolve(ctx context.Context, quote Quote) Quote {
	e.metrics.IncFeeQuote(string(quote.Tier))
	if e.logger != nil {
		fields := map[string]any{
			"fee":  quote.Fee.StringFixed(2),
			"tier": string(quote.Tier),
		}
		if quote.DistanceKm != nil {
			fields["distance_km"] = *quote.DistanceKm
		}
		e.logger.Info(e.logger.WithFields(ctx, fields), "delivery fee quoted")
	}
	return quote
}

func (e *Engine) warn(ctx context.Context, msg string, err error) {
	if e.logger == nil {
		return
	}
	e.logger.Warn(e.logger.WithField(ctx, "error", err.Error()), msg)
}
