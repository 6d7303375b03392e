package mercadopago

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucasmv/zapflow-backend/internal/board"
	"github.com/lucasmv/zapflow-backend/internal/orders"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	"github.com/lucasmv/zapflow-backend/pkg/enums"
	mpclient "github.com/lucasmv/zapflow-backend/pkg/mercadopago"
	"github.com/lucasmv/zapflow-backend/pkg/types"
)

type stubProvider struct {
	info      *mpclient.PaymentInfo
	err       error
	lastToken string
}

func (s *stubProvider) GetPayment(_ context.Context, token, _ string) (*mpclient.PaymentInfo, error) {
	s.lastToken = token
	return s.info, s.err
}

type stubCompanies struct {
	company *models.Company
}

func (s *stubCompanies) FindCompanyByID(_ context.Context, _ uuid.UUID) (*models.Company, error) {
	return s.company, nil
}

type recordNotifier struct {
	events []board.Event
}

func (r *recordNotifier) Publish(_ context.Context, _ uuid.UUID, event board.Event) error {
	r.events = append(r.events, event)
	return nil
}

func setupWebhookTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:webhooks?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  customer_id TEXT,
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  total_price TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  address_details TEXT,
  payment_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  created_at DATETIME
);`
	for _, stmt := range []string{ordersTable, itemsTable} {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	t.Cleanup(func() {
		conn.Exec("DELETE FROM order_items")
		conn.Exec("DELETE FROM orders")
	})
	return conn
}

type webhookFixture struct {
	repo     orders.Repository
	provider *stubProvider
	notifier *recordNotifier
	company  *models.Company
	order    *models.Order
}

func newWebhookFixture(t *testing.T) (*Service, *webhookFixture) {
	t.Helper()

	conn := setupWebhookTestDB(t)
	repo := orders.NewRepository(conn)

	token := "APP_USR-tenant-token"
	company := &models.Company{
		ID:            uuid.New(),
		Name:          "Pizzaria Boa Massa",
		Slug:          "boa-massa",
		MPAccessToken: &token,
	}

	order := &models.Order{
		ID:            uuid.New(),
		CompanyID:     company.ID,
		CustomerName:  "Maria",
		CustomerPhone: "11988887777",
		TotalPrice:    decimal.RequireFromString("61.90"),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		AddressDetails: types.OrderMetadata{
			PaymentMethod: enums.PaymentMethodPix,
		},
	}
	_, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	require.NoError(t, repo.SetPaymentID(context.Background(), order.ID, "987654"))

	f := &webhookFixture{
		repo:     repo,
		provider: &stubProvider{},
		notifier: &recordNotifier{},
		company:  company,
		order:    order,
	}
	svc := NewService(f.provider, repo, &stubCompanies{company: company}, f.notifier, nil, nil)
	return svc, f
}

func TestHandleEventApprovedMarksPaid(t *testing.T) {
	svc, f := newWebhookFixture(t)
	f.provider.info = &mpclient.PaymentInfo{ID: "987654", Status: "approved"}

	outcome, err := svc.HandleEvent(context.Background(), Event{Type: "payment", PaymentID: "987654"})
	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, outcome)

	assert.Equal(t, "APP_USR-tenant-token", f.provider.lastToken)

	stored, err := f.repo.FindByPaymentID(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, stored.PaymentStatus)
	// fulfillment status is the operator's axis, payment never moves it
	assert.Equal(t, enums.OrderStatusPending, stored.Status)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, board.EventOrderPaid, f.notifier.events[0].Kind)
}

func TestHandleEventDuplicateDeliveryIsNoop(t *testing.T) {
	svc, f := newWebhookFixture(t)
	f.provider.info = &mpclient.PaymentInfo{ID: "987654", Status: "approved"}

	first, err := svc.HandleEvent(context.Background(), Event{Type: "payment", PaymentID: "987654"})
	require.NoError(t, err)
	require.Equal(t, OutcomePaid, first)

	second, err := svc.HandleEvent(context.Background(), Event{Type: "payment", PaymentID: "987654"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second)

	// only the first transition published an event
	assert.Len(t, f.notifier.events, 1)
}

func TestHandleEventUnknownPaymentIgnored(t *testing.T) {
	svc, f := newWebhookFixture(t)
	f.provider.info = &mpclient.PaymentInfo{ID: "111", Status: "approved"}

	outcome, err := svc.HandleEvent(context.Background(), Event{Type: "payment", PaymentID: "111"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
}

func TestHandleEventMissingPaymentIDIgnored(t *testing.T) {
	svc, _ := newWebhookFixture(t)

	outcome, err := svc.HandleEvent(context.Background(), Event{Type: "payment"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
}

func TestHandleEventEmptyTypeIgnored(t *testing.T) {
	svc, f := newWebhookFixture(t)

	outcome, err := svc.HandleEvent(context.Background(), Event{PaymentID: "987654"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Empty(t, f.provider.lastToken, "provider must not be queried without an explicit payment type")

	stored, err := f.repo.FindForCompany(context.Background(), f.company.ID, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusUnpaid, stored.PaymentStatus)
}

func TestHandleEventNonPaymentTypeIgnored(t *testing.T) {
	svc, _ := newWebhookFixture(t)

	outcome, err := svc.HandleEvent(context.Background(), Event{Type: "plan", PaymentID: "987654"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
}

func TestHandleEventPendingStatusNotApproved(t *testing.T) {
	svc, f := newWebhookFixture(t)
	f.provider.info = &mpclient.PaymentInfo{ID: "987654", Status: "pending"}

	outcome, err := svc.HandleEvent(context.Background(), Event{Type: "payment", PaymentID: "987654"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotApproved, outcome)

	stored, err := f.repo.FindByPaymentID(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusUnpaid, stored.PaymentStatus)
}

func TestHandleEventProviderFailure(t *testing.T) {
	svc, f := newWebhookFixture(t)
	f.provider.err = errors.New("mp timeout")

	outcome, err := svc.HandleEvent(context.Background(), Event{Type: "payment", PaymentID: "987654"})
	require.Error(t, err)
	assert.Equal(t, OutcomeError, outcome)
}
