package board

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucasmv/zapflow-backend/internal/orders"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	"github.com/lucasmv/zapflow-backend/pkg/enums"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/types"
)

type fakeNotifier struct {
	events []Event
}

func (f *fakeNotifier) Publish(_ context.Context, _ uuid.UUID, event Event) error {
	f.events = append(f.events, event)
	return nil
}

func setupBoardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:board?mode=memory&cache=shared"), &gorm.Config{})
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

func seedOrder(t *testing.T, repo orders.Repository, companyID uuid.UUID, status enums.OrderStatus, method enums.PaymentMethod) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		CompanyID:     companyID,
		CustomerName:  "Maria",
		CustomerPhone: "11988887777",
		TotalPrice:    decimal.RequireFromString("61.90"),
		Status:        status,
		PaymentStatus: enums.PaymentStatusUnpaid,
		AddressDetails: types.OrderMetadata{
			Address:       "Rua A, 100 - Centro",
			PaymentMethod: method,
			DeliveryFee:   decimal.NewFromInt(5),
		},
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductName: "Margherita", Quantity: 1, UnitPrice: decimal.RequireFromString("49.90")},
		},
	}
	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestAdvanceMovesOneStepAndPublishes(t *testing.T) {
	conn := setupBoardTestDB(t)
	repo := orders.NewRepository(conn)
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil)
	companyID := uuid.New()

	order := seedOrder(t, repo, companyID, enums.OrderStatusPending, enums.PaymentMethodPix)

	view, err := svc.Advance(context.Background(), companyID, order.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPreparing, view.Status)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, EventOrderUpdated, notifier.events[0].Kind)
	assert.Equal(t, order.ID, notifier.events[0].Order.ID)
}

func TestAdvanceDeliveredOrderConflicts(t *testing.T) {
	conn := setupBoardTestDB(t)
	repo := orders.NewRepository(conn)
	svc := NewService(repo, &fakeNotifier{}, nil)
	companyID := uuid.New()

	order := seedOrder(t, repo, companyID, enums.OrderStatusDelivered, enums.PaymentMethodPix)

	_, err := svc.Advance(context.Background(), companyID, order.ID)
	require.Error(t, err)

	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, domainErr.Code())
}

func TestAdvanceUnknownOrderNotFound(t *testing.T) {
	conn := setupBoardTestDB(t)
	repo := orders.NewRepository(conn)
	svc := NewService(repo, &fakeNotifier{}, nil)

	_, err := svc.Advance(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)

	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
}

func TestAdvanceOtherTenantOrderNotFound(t *testing.T) {
	conn := setupBoardTestDB(t)
	repo := orders.NewRepository(conn)
	svc := NewService(repo, &fakeNotifier{}, nil)

	order := seedOrder(t, repo, uuid.New(), enums.OrderStatusPending, enums.PaymentMethodPix)

	_, err := svc.Advance(context.Background(), uuid.New(), order.ID)
	require.Error(t, err)
}

func TestDeliveringCashOrderMarksPaid(t *testing.T) {
	conn := setupBoardTestDB(t)
	repo := orders.NewRepository(conn)
	svc := NewService(repo, &fakeNotifier{}, nil)
	companyID := uuid.New()

	order := seedOrder(t, repo, companyID, enums.OrderStatusReady, enums.PaymentMethodCash)

	view, err := svc.Advance(context.Background(), companyID, order.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusDelivered, view.Status)
	assert.Equal(t, enums.PaymentStatusPaid, view.PaymentStatus)
}

func TestDeliveringPixOrderLeavesPaymentToWebhook(t *testing.T) {
	conn := setupBoardTestDB(t)
	repo := orders.NewRepository(conn)
	svc := NewService(repo, &fakeNotifier{}, nil)
	companyID := uuid.New()

	order := seedOrder(t, repo, companyID, enums.OrderStatusReady, enums.PaymentMethodPix)

	view, err := svc.Advance(context.Background(), companyID, order.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusDelivered, view.Status)
	assert.Equal(t, enums.PaymentStatusUnpaid, view.PaymentStatus)
}

func TestSnapshotReturnsActiveAndTodaysDeliveries(t *testing.T) {
	conn := setupBoardTestDB(t)
	repo := orders.NewRepository(conn)
	svc := NewService(repo, &fakeNotifier{}, nil)
	companyID := uuid.New()

	seedOrder(t, repo, companyID, enums.OrderStatusPending, enums.PaymentMethodPix)
	seedOrder(t, repo, companyID, enums.OrderStatusPreparing, enums.PaymentMethodCash)
	delivered := seedOrder(t, repo, companyID, enums.OrderStatusDelivered, enums.PaymentMethodPix)

	old := seedOrder(t, repo, companyID, enums.OrderStatusDelivered, enums.PaymentMethodPix)
	require.NoError(t, conn.Model(&models.Order{}).
		Where("id = ?", old.ID).
		UpdateColumn("updated_at", time.Now().Add(-48*time.Hour)).Error)

	views, err := svc.Snapshot(context.Background(), companyID)
	require.NoError(t, err)

	require.Len(t, views, 3)
	found := false
	for _, view := range views {
		if view.ID == delivered.ID {
			found = true
		}
		require.NotEmpty(t, view.ShortID)
	}
	assert.True(t, found)
}
