package orders

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

	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	"github.com/lucasmv/zapflow-backend/pkg/enums"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/pagination"
	"github.com/lucasmv/zapflow-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:orders?mode=memory&cache=shared"), &gorm.Config{})
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

func buildOrder(companyID uuid.UUID, status enums.OrderStatus) *models.Order {
	productID := uuid.New()
	return &models.Order{
		ID:            uuid.New(),
		CompanyID:     companyID,
		CustomerName:  "Maria",
		CustomerPhone: "11988887777",
		TotalPrice:    decimal.RequireFromString("61.90"),
		Status:        status,
		PaymentStatus: enums.PaymentStatusUnpaid,
		AddressDetails: types.OrderMetadata{
			Address:       "Rua A, 100 - Centro",
			PaymentMethod: enums.PaymentMethodPix,
			DeliveryFee:   decimal.NewFromInt(5),
		},
		Items: []models.OrderItem{
			{
				ID:          uuid.New(),
				ProductID:   &productID,
				ProductName: "Margherita",
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("49.90"),
			},
		},
	}
}

func TestCreateAndFindWithItems(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	companyID := uuid.New()

	created, err := repo.Create(context.Background(), buildOrder(companyID, enums.OrderStatusPending))
	require.NoError(t, err)

	found, err := repo.FindForCompany(context.Background(), companyID, created.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, found.Status)
	assert.True(t, found.TotalPrice.Equal(decimal.RequireFromString("61.90")))
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Margherita", found.Items[0].ProductName)
	assert.Equal(t, enums.PaymentMethodPix, found.AddressDetails.PaymentMethod)
}

func TestFindForCompanyScopesTenant(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	created, err := repo.Create(context.Background(), buildOrder(uuid.New(), enums.OrderStatusPending))
	require.NoError(t, err)

	_, err = repo.FindForCompany(context.Background(), uuid.New(), created.ID)
	require.Error(t, err)
}

func TestAdvanceStatusHappyPath(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	companyID := uuid.New()

	created, err := repo.Create(context.Background(), buildOrder(companyID, enums.OrderStatusPending))
	require.NoError(t, err)

	moved, err := repo.AdvanceStatus(context.Background(), companyID, created.ID, enums.OrderStatusPending, enums.OrderStatusPreparing)
	require.NoError(t, err)
	assert.True(t, moved)

	found, err := repo.FindForCompany(context.Background(), companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, found.Status)
}

func TestAdvanceStatusStaleFromMatchesNothing(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	companyID := uuid.New()

	created, err := repo.Create(context.Background(), buildOrder(companyID, enums.OrderStatusPreparing))
	require.NoError(t, err)

	// the card already left pending, a second click must not move it again
	moved, err := repo.AdvanceStatus(context.Background(), companyID, created.ID, enums.OrderStatusPending, enums.OrderStatusPreparing)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	companyID := uuid.New()

	created, err := repo.Create(context.Background(), buildOrder(companyID, enums.OrderStatusPending))
	require.NoError(t, err)

	first, err := repo.MarkPaid(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkPaid(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, second)

	found, err := repo.FindForCompany(context.Background(), companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, found.PaymentStatus)
}

func TestPaymentIDRoundTrip(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	companyID := uuid.New()

	created, err := repo.Create(context.Background(), buildOrder(companyID, enums.OrderStatusPending))
	require.NoError(t, err)

	require.NoError(t, repo.SetPaymentID(context.Background(), created.ID, "123456789"))

	found, err := repo.FindByPaymentID(context.Background(), "123456789")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindByPaymentID(context.Background(), "unknown")
	require.Error(t, err)
}

func TestListBoardIncludesActiveAndRecentDeliveries(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	companyID := uuid.New()

	pending, err := repo.Create(context.Background(), buildOrder(companyID, enums.OrderStatusPending))
	require.NoError(t, err)
	ready, err := repo.Create(context.Background(), buildOrder(companyID, enums.OrderStatusReady))
	require.NoError(t, err)
	deliveredToday, err := repo.Create(context.Background(), buildOrder(companyID, enums.OrderStatusDelivered))
	require.NoError(t, err)

	oldDelivered := buildOrder(companyID, enums.OrderStatusDelivered)
	_, err = repo.Create(context.Background(), oldDelivered)
	require.NoError(t, err)
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, conn.Model(&models.Order{}).
		Where("id = ?", oldDelivered.ID).
		UpdateColumn("updated_at", stale).Error)

	// order from another tenant never leaks in
	_, err = repo.Create(context.Background(), buildOrder(uuid.New(), enums.OrderStatusPending))
	require.NoError(t, err)

	board, err := repo.ListBoard(context.Background(), companyID, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool, len(board))
	for _, order := range board {
		ids[order.ID] = true
	}
	assert.True(t, ids[pending.ID])
	assert.True(t, ids[ready.ID])
	assert.True(t, ids[deliveredToday.ID])
	assert.False(t, ids[oldDelivered.ID])
	assert.Len(t, board, 3)
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	companyID := uuid.New()

	var last uuid.UUID
	for i := 0; i < 7; i++ {
		order := buildOrder(companyID, enums.OrderStatusPending)
		order.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		_, err := repo.Create(context.Background(), order)
		require.NoError(t, err)
		last = order.ID
	}

	recent, err := repo.ListRecent(context.Background(), companyID, 5)
	require.NoError(t, err)

	require.Len(t, recent, 5)
	assert.Equal(t, last, recent[0].ID)
}

func TestDashboardStats(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	companyID := uuid.New()

	a := buildOrder(companyID, enums.OrderStatusPending)
	a.TotalPrice = decimal.NewFromInt(50)
	_, err := repo.Create(context.Background(), a)
	require.NoError(t, err)

	b := buildOrder(companyID, enums.OrderStatusReady)
	b.TotalPrice = decimal.RequireFromString("30.50")
	_, err = repo.Create(context.Background(), b)
	require.NoError(t, err)

	old := buildOrder(companyID, enums.OrderStatusDelivered)
	_, err = repo.Create(context.Background(), old)
	require.NoError(t, err)
	yesterday := time.Now().Add(-30 * time.Hour)
	require.NoError(t, conn.Model(&models.Order{}).
		Where("id = ?", old.ID).
		UpdateColumn("created_at", yesterday).Error)

	stats, err := repo.DashboardStats(context.Background(), companyID, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.OrdersCount)
	assert.True(t, stats.Revenue.Equal(decimal.RequireFromString("80.50")), "revenue %s", stats.Revenue)
	assert.Equal(t, int64(1), stats.PendingCount)
}

func TestListHistoryPagesWithCursor(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	companyID := uuid.New()

	base := time.Now().Add(-time.Hour)
	ids := make([]uuid.UUID, 0, 7)
	for i := 0; i < 7; i++ {
		order := buildOrder(companyID, enums.OrderStatusDelivered)
		order.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := repo.Create(context.Background(), order)
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}
	_, err := repo.Create(context.Background(), buildOrder(uuid.New(), enums.OrderStatusPending))
	require.NoError(t, err)

	first, cursor, err := repo.ListHistory(context.Background(), companyID, pagination.Params{Limit: 5})
	require.NoError(t, err)
	require.Len(t, first, 5)
	require.NotEmpty(t, cursor)
	assert.Equal(t, ids[6], first[0].ID)
	assert.Equal(t, ids[2], first[4].ID)

	second, next, err := repo.ListHistory(context.Background(), companyID, pagination.Params{Limit: 5, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Empty(t, next)
	assert.Equal(t, ids[1], second[0].ID)
	assert.Equal(t, ids[0], second[1].ID)
}

func TestListHistoryRejectsGarbageCursor(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	_, _, err := repo.ListHistory(context.Background(), uuid.New(), pagination.Params{Cursor: "not-a-cursor"})
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
}
