package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/lucasmv/zapflow-backend/internal/payments"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
)

type stubPaymentsService struct {
	intent *payments.PixIntent
	err    error
}

func (s stubPaymentsService) CreateIntent(context.Context, *models.Company, *models.Order) (*payments.PixIntent, error) {
	return s.intent, s.err
}

type stubCompanyLookup struct {
	company *models.Company
	err     error
}

func (s stubCompanyLookup) FindCompanyByID(context.Context, uuid.UUID) (*models.Company, error) {
	return s.company, s.err
}

type stubOrderLookup struct {
	order *models.Order
	err   error
}

func (s stubOrderLookup) FindForCompany(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func pixIntentRequestBody(orderID, companyID uuid.UUID) string {
	return `{"orderId": "` + orderID.String() + `", "companyId": "` + companyID.String() + `", "total": 104.80}`
}

func TestCreatePixIntentSuccess(t *testing.T) {
	orderID := uuid.New()
	companyID := uuid.New()
	handler := CreatePixIntent(
		stubPaymentsService{intent: &payments.PixIntent{PaymentID: "987654", QRCode: "qr-data", CopyPaste: "qr-data"}},
		stubCompanyLookup{company: &models.Company{ID: companyID}},
		stubOrderLookup{order: &models.Order{ID: orderID, CompanyID: companyID}},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/payments/pix", strings.NewReader(pixIntentRequestBody(orderID, companyID)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}

	var envelope struct {
		Data payments.PixIntent `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PaymentID != "987654" {
		t.Fatalf("expected payment id 987654 got %s", envelope.Data.PaymentID)
	}
}

func TestCreatePixIntentStoreNotConfigured(t *testing.T) {
	orderID := uuid.New()
	companyID := uuid.New()
	handler := CreatePixIntent(
		stubPaymentsService{err: pkgerrors.New(pkgerrors.CodeNotConfigured, "store has no pix account connected")},
		stubCompanyLookup{company: &models.Company{ID: companyID}},
		stubOrderLookup{order: &models.Order{ID: orderID, CompanyID: companyID}},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/payments/pix", strings.NewReader(pixIntentRequestBody(orderID, companyID)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCreatePixIntentUnknownOrder(t *testing.T) {
	handler := CreatePixIntent(
		stubPaymentsService{},
		stubCompanyLookup{company: &models.Company{ID: uuid.New()}},
		stubOrderLookup{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/payments/pix", strings.NewReader(pixIntentRequestBody(uuid.New(), uuid.New())))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestCreatePixIntentMissingOrderID(t *testing.T) {
	handler := CreatePixIntent(stubPaymentsService{}, stubCompanyLookup{}, stubOrderLookup{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/payments/pix", strings.NewReader(`{"companyId": "`+uuid.NewString()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
