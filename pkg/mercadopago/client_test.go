package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
)

func TestCreatePixPaymentSuccess(t *testing.T) {
	var gotAuth, gotIdempotency string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payments", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotIdempotency = r.Header.Get("X-Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": 987654321,
			"status": "pending",
			"point_of_interaction": {
				"transaction_data": {
					"qr_code": "00020126pix-payload",
					"qr_code_base64": "aW1hZ2U="
				}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	payment, err := client.CreatePixPayment(context.Background(), "APP_USR-token", PixCreateParams{
		IdempotencyKey: "order-uuid",
		Amount:         decimal.RequireFromString("104.80"),
		Description:    "Pedido #A1B2C3 - Burgeria do Ze",
		PayerEmail:     "cliente-11988887777@zapflow.app",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer APP_USR-token", gotAuth)
	assert.Equal(t, "order-uuid", gotIdempotency)
	assert.Equal(t, "pix", gotBody["payment_method_id"])
	assert.InDelta(t, 104.80, gotBody["transaction_amount"], 0.001)

	assert.Equal(t, "987654321", payment.ID)
	assert.Equal(t, "pending", payment.Status)
	assert.Equal(t, "00020126pix-payload", payment.QRCode)
	assert.Equal(t, "aW1hZ2U=", payment.QRCodeBase64)
	assert.Equal(t, payment.QRCode, payment.CopyPasteCode())
}

func TestCreatePixPaymentRequiresToken(t *testing.T) {
	client := NewClient(nil)

	_, err := client.CreatePixPayment(context.Background(), "  ", PixCreateParams{
		Amount: decimal.NewFromInt(10),
	})
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeNotConfigured, domainErr.Code())
}

func TestCreatePixPaymentRejectsNonPositiveAmount(t *testing.T) {
	client := NewClient(nil)

	_, err := client.CreatePixPayment(context.Background(), "token", PixCreateParams{
		Amount: decimal.Zero,
	})
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
}

func TestCreatePixPaymentMapsProviderErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "invalid payer email"}`))
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	_, err := client.CreatePixPayment(context.Background(), "token", PixCreateParams{
		Amount: decimal.NewFromInt(10),
	})
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
	assert.Contains(t, err.Error(), "invalid payer email")
}

func TestGetPaymentSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/987654", r.URL.Path)
		require.Equal(t, "Bearer tenant-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 987654, "status": "approved"}`))
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	info, err := client.GetPayment(context.Background(), "tenant-token", "987654")
	require.NoError(t, err)

	assert.Equal(t, "987654", info.ID)
	assert.True(t, info.IsApproved())
}

func TestGetPaymentOnlyApprovedSettles(t *testing.T) {
	for _, status := range []string{"pending", "in_process", "rejected", "cancelled"} {
		info := PaymentInfo{Status: status}
		assert.False(t, info.IsApproved(), "status %s must not settle", status)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Payment not found"}`))
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	_, err := client.GetPayment(context.Background(), "token", "404404")
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
}
