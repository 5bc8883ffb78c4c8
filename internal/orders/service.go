// Package orders owns the order lifecycle: creation with price
// snapshotting, status transitions, kitchen and admin views.
package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/servex-app/servex-backend/internal/notify"
	"github.com/servex-app/servex-backend/internal/pricing"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
)

// MenuItemReader is the slice of the catalog needed to price an order.
type MenuItemReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuItem, error)
}

// TableReader resolves the table an order is placed from.
type TableReader interface {
	GetTableByID(ctx context.Context, id uuid.UUID) (*models.Table, error)
}

// Service implements the order operations.
type Service struct {
	repo        Repository
	menu        MenuItemReader
	tables      TableReader
	bus         notify.Publisher
	taxRate     decimal.Decimal
	serviceRate decimal.Decimal
	log         *logger.Logger
}

func NewService(
	repo Repository,
	menu MenuItemReader,
	tables TableReader,
	bus notify.Publisher,
	taxRate, serviceRate decimal.Decimal,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		menu:        menu,
		tables:      tables,
		bus:         bus,
		taxRate:     taxRate,
		serviceRate: serviceRate,
		log:         log,
	}
}

// Create validates the requested lines against the live catalog,
// snapshots item names and prices, computes the totals server-side and
// persists the order in CREATED. The whole request fails if any single
// line references a missing or unavailable item; no partial orders.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (*OrderResponse, error) {
	if len(input.Items) == 0 {
		return nil, errors.New(errors.CodeValidation, "order must contain at least one item")
	}
	if input.SessionID == "" {
		return nil, errors.New(errors.CodeValidation, "missing table session")
	}

	table, err := s.tables.GetTableByID(ctx, input.TableID)
	if err != nil {
		return nil, err
	}
	if !table.IsActive {
		return nil, errors.New(errors.CodeValidation, "table is not accepting orders")
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.MenuItemID)
	}
	menuItems, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.MenuItem, len(menuItems))
	for _, item := range menuItems {
		byID[item.ID] = item
	}

	var rejected []string
	lines := make([]pricing.Line, 0, len(input.Items))
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	for _, requested := range input.Items {
		item, ok := byID[requested.MenuItemID]
		if !ok || !item.IsAvailable {
			rejected = append(rejected, requested.MenuItemID.String())
			continue
		}
		lines = append(lines, pricing.Line{UnitPrice: item.Price, Quantity: requested.Quantity})
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID:   item.ID,
			Name:         item.Name,
			Price:        item.Price,
			Quantity:     requested.Quantity,
			Instructions: requested.Instructions,
		})
	}
	if len(rejected) > 0 {
		return nil, errors.New(errors.CodeValidation, "some items are unavailable").
			WithDetails(map[string]any{"unavailableItems": rejected})
	}

	quote, err := pricing.Calculate(lines, s.taxRate, s.serviceRate)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		TableID:       table.ID,
		Items:         orderItems,
		Subtotal:      quote.Subtotal,
		Tax:           quote.Tax,
		ServiceCharge: quote.ServiceCharge,
		TotalAmount:   quote.Total,
		Status:        enums.OrderStatusCreated,
		SessionID:     input.SessionID,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	order.Table = table

	ctx = s.log.WithOrderID(ctx, order.ID.String())
	s.log.Info(ctx, "order created")
	return NewOrderResponse(order), nil
}

// Get returns a single order with its lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewOrderResponse(order), nil
}

// ListKitchenActive returns PAID, PREPARING and READY orders oldest
// first, the working order for the kitchen.
func (s *Service) ListKitchenActive(ctx context.Context) ([]OrderResponse, error) {
	rows, err := s.repo.ListKitchenActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *NewOrderResponse(&rows[i]))
	}
	return out, nil
}

// List is the admin order listing with pagination and filters.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	params.normalize()
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	out := make([]OrderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *NewOrderResponse(&rows[i]))
	}
	return &ListResult{Orders: out, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}

// Analytics aggregates order volume and revenue for the admin dashboard.
func (s *Service) Analytics(ctx context.Context, params AnalyticsParams) (*AnalyticsSummary, error) {
	return s.repo.Analytics(ctx, params.Since)
}

// UpdateStatus applies a lifecycle transition requested by staff. The
// transition is validated against the state machine first, then applied
// as a conditional update so concurrent requests cannot both win. The
// winner publishes order:statusUpdate to the kitchen and to the order's
// own topic.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*OrderResponse, error) {
	target, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": input.Status})
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, errors.New(errors.CodeStateConflict, "illegal status transition").
			WithDetails(map[string]any{"from": order.Status, "to": target})
	}

	won, err := s.repo.UpdateStatusIf(ctx, id, order.Status, target)
	if err != nil {
		return nil, err
	}
	if !won {
		current, reloadErr := s.repo.GetByID(ctx, id)
		details := map[string]any{"to": target}
		if reloadErr == nil {
			details["from"] = current.Status
		}
		return nil, errors.New(errors.CodeStateConflict, "order status changed concurrently").
			WithDetails(details)
	}

	order.Status = target
	ctx = s.log.WithFields(ctx, map[string]any{"order_id": id.String(), "status": target})
	s.log.Info(ctx, "order status updated")
	s.PublishStatusUpdate(ctx, order)
	return NewOrderResponse(order), nil
}

// PublishStatusUpdate fans the order's current status out to the
// kitchen topic and the order's own topic. Publish failures are logged,
// never surfaced: the state change already committed.
func (s *Service) PublishStatusUpdate(ctx context.Context, order *models.Order) {
	payload := StatusUpdatePayload{
		OrderID:   order.ID,
		Status:    order.Status,
		UpdatedAt: order.UpdatedAt,
	}
	msg, err := notify.NewMessage(notify.EventOrderStatusUpdate, payload)
	if err != nil {
		s.log.Error(ctx, "building status update event", err)
		return
	}
	for _, topic := range []string{notify.TopicKitchen, notify.OrderTopic(order.ID)} {
		if err := s.bus.Publish(ctx, topic, msg); err != nil {
			s.log.Error(ctx, "publishing status update", err)
		}
	}
}

// NewOrderResponse converts a stored order into its public shape. Bus
// publishers use it too, so session and contact details never reach a
// topic payload.
func NewOrderResponse(order *models.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:           item.ID,
			MenuItemID:   item.MenuItemID,
			Name:         item.Name,
			Price:        item.Price,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		})
	}
	resp := &OrderResponse{
		ID:            order.ID,
		TableID:       order.TableID,
		Items:         items,
		Subtotal:      order.Subtotal,
		Tax:           order.Tax,
		ServiceCharge: order.ServiceCharge,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		CustomerName:  order.CustomerName,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.Table != nil {
		number := order.Table.TableNumber
		resp.TableNumber = &number
	}
	return resp
}
