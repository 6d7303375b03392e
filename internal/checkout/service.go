package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lucasmv/zapflow-backend/internal/board"
	"github.com/lucasmv/zapflow-backend/internal/customers"
	"github.com/lucasmv/zapflow-backend/internal/deliveryfee"
	"github.com/lucasmv/zapflow-backend/internal/hours"
	"github.com/lucasmv/zapflow-backend/internal/orders"
	"github.com/lucasmv/zapflow-backend/internal/payments"
	"github.com/lucasmv/zapflow-backend/pkg/db/models"
	"github.com/lucasmv/zapflow-backend/pkg/enums"
	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
	"github.com/lucasmv/zapflow-backend/pkg/metrics"
	"github.com/lucasmv/zapflow-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type companyResolver interface {
	FindCompanyBySlug(ctx context.Context, slug string) (*models.Company, error)
	FindProductsByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
}

type feeQuoter interface {
	Quote(ctx context.Context, company *models.Company, customerCEP string) (deliveryfee.Quote, error)
}

// Service drives the public checkout flow.
type Service interface {
	PlaceOrder(ctx context.Context, slug string, input PlaceOrderInput) (*Confirmation, error)
}

// Options toggles behavior that differs between deployments.
type Options struct {
	EnforceBusinessHours bool
}

type service struct {
	tx           txRunner
	catalog      companyResolver
	customerRepo customers.Repository
	orderRepo    orders.Repository
	fees         feeQuoter
	gate         *hours.Gate
	payments     payments.Service
	notifier     board.Notifier
	logger       *logger.Logger
	metrics      *metrics.StorefrontMetrics
	opts         Options
	now          func() time.Time
}

// NewService wires the checkout service.
func NewService(
	tx txRunner,
	catalogRepo companyResolver,
	customerRepo customers.Repository,
	orderRepo orders.Repository,
	fees feeQuoter,
	gate *hours.Gate,
	paymentsSvc payments.Service,
	notifier board.Notifier,
	logg *logger.Logger,
	m *metrics.StorefrontMetrics,
	opts Options,
) Service {
	return &service{
		tx:           tx,
		catalog:      catalogRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		fees:         fees,
		gate:         gate,
		payments:     paymentsSvc,
		notifier:     notifier,
		logger:       logg,
		metrics:      m,
		opts:         opts,
		now:          time.Now,
	}
}

// PlaceOrder validates the submission, reprices the cart from the live
// catalog, and writes customer, order and items in one transaction. The PIX
// charge happens after commit: a provider outage costs the customer a QR
// code, never the order.
func (s *service) PlaceOrder(ctx context.Context, slug string, input PlaceOrderInput) (*Confirmation, error) {
	started := s.now()

	confirmation, err := s.placeOrder(ctx, slug, input)
	if err != nil {
		s.metrics.ObserveCheckout("error", s.now().Sub(started))
		return nil, err
	}
	s.metrics.ObserveCheckout("ok", s.now().Sub(started))
	return confirmation, nil
}

func (s *service) placeOrder(ctx context.Context, slug string, input PlaceOrderInput) (*Confirmation, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if input.ChangeFor != nil && !method.AllowsChange() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "change amount only applies to cash orders")
	}

	company, err := s.catalog.FindCompanyBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if s.opts.EnforceBusinessHours && !s.gate.IsOpen(company.BusinessHours) {
		return nil, pkgerrors.New(pkgerrors.CodeStoreClosed, "store is closed right now")
	}

	items, itemsTotal, err := s.buildItems(ctx, company.ID, input.Items)
	if err != nil {
		return nil, err
	}

	quote, err := s.fees.Quote(ctx, company, input.Address.NormalizedCEP())
	if err != nil {
		return nil, err
	}

	total := itemsTotal.Add(quote.Fee)
	if input.ChangeFor != nil && input.ChangeFor.LessThan(total) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "change amount is below the order total")
	}

	order := &models.Order{
		ID:            uuid.New(),
		CompanyID:     company.ID,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		TotalPrice:    total,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		AddressDetails: types.OrderMetadata{
			Address:       input.Address.Format(),
			PaymentMethod: method,
			ChangeFor:     input.ChangeFor,
			DeliveryFee:   quote.Fee,
		},
		Items: items,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		customer, upsertErr := s.customerRepo.WithTx(tx).
			Upsert(ctx, company.ID, input.CustomerName, input.CustomerPhone, &input.Address)
		if upsertErr != nil {
			return upsertErr
		}
		order.CustomerID = &customer.ID
		order.CustomerPhone = customer.Phone

		_, createErr := s.orderRepo.WithTx(tx).Create(ctx, order)
		return createErr
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderPlaced(method.String())
	view := board.ToOrderView(order)
	if s.notifier != nil {
		if publishErr := s.notifier.Publish(ctx, company.ID, board.Event{Kind: board.EventOrderCreated, Order: view}); publishErr != nil {
			s.warn(ctx, "publishing order_created failed", publishErr)
		}
	}

	confirmation := &Confirmation{Order: view}
	if method == enums.PaymentMethodPix {
		intent, pixErr := s.payments.CreateIntent(ctx, company, order)
		if pixErr != nil {
			s.warn(ctx, "pix charge creation failed, order kept", pixErr)
			msg := publicPixError(pixErr)
			confirmation.PixError = &msg
		} else {
			confirmation.Pix = intent
		}
	}
	return confirmation, nil
}

// buildItems reprices the cart against the live catalog so a tampered client
// cannot set its own prices.
func (s *service) buildItems(ctx context.Context, companyID uuid.UUID, inputs []CartItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, item := range inputs {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.FindProductsByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	items := make([]models.OrderItem, 0, len(inputs))
	total := decimal.Zero
	for _, input := range inputs {
		product, ok := byID[input.ProductID]
		if !ok {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available")
		}
		if !product.InStock {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock").
				WithDetails(map[string]string{"product": product.Name})
		}
		productID := product.ID
		items = append(items, models.OrderItem{
			ID:          uuid.New(),
			ProductID:   &productID,
			ProductName: product.Name,
			Quantity:    input.Quantity,
			UnitPrice:   product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))))
	}
	return items, total, nil
}

func publicPixError(err error) string {
	if domainErr := pkgerrors.As(err); domainErr != nil &&
		domainErr.Code() == pkgerrors.CodeNotConfigured {
		return "store has no pix account connected"
	}
	return "pix charge could not be created, the store will confirm payment manually"
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), msg)
}
