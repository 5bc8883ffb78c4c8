package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servex-app/servex-backend/internal/notify"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
)

type fakeRepo struct {
	orders       map[uuid.UUID]*models.Order
	statusUpdate func(id uuid.UUID, from, to enums.OrderStatus) (bool, error)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (f *fakeRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = order
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	clone := *order
	return &clone, nil
}

func (f *fakeRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	if f.statusUpdate != nil {
		return f.statusUpdate(id, from, to)
	}
	order, ok := f.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (f *fakeRepo) MarkPaid(_ context.Context, id, paymentID uuid.UUID) (bool, error) {
	order, ok := f.orders[id]
	if !ok || order.Status != enums.OrderStatusCreated {
		return false, nil
	}
	order.Status = enums.OrderStatusPaid
	order.PaymentID = &paymentID
	return true, nil
}

func (f *fakeRepo) ListKitchenActive(context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		for _, status := range enums.KitchenActiveOrderStatuses() {
			if order.Status == status {
				out = append(out, *order)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) List(context.Context, ListParams) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Analytics(context.Context, time.Time) (*AnalyticsSummary, error) {
	return &AnalyticsSummary{}, nil
}

func (f *fakeRepo) CancelStaleCreated(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeMenu struct {
	items map[uuid.UUID]models.MenuItem
}

func (f *fakeMenu) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeTables struct {
	tables map[uuid.UUID]*models.Table
}

func (f *fakeTables) GetTableByID(_ context.Context, id uuid.UUID) (*models.Table, error) {
	table, ok := f.tables[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "table not found")
	}
	return table, nil
}

type recordingBus struct {
	published []struct {
		Topic string
		Msg   notify.Message
	}
}

func (b *recordingBus) Publish(_ context.Context, topic string, msg notify.Message) error {
	b.published = append(b.published, struct {
		Topic string
		Msg   notify.Message
	}{topic, msg})
	return nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	service *Service
	repo    *fakeRepo
	menu    *fakeMenu
	tables  *fakeTables
	bus     *recordingBus

	tableID uuid.UUID
	paneer  uuid.UUID
	naan    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    newFakeRepo(),
		bus:     &recordingBus{},
		tableID: uuid.New(),
		paneer:  uuid.New(),
		naan:    uuid.New(),
	}
	f.menu = &fakeMenu{items: map[uuid.UUID]models.MenuItem{
		f.paneer: {ID: f.paneer, Name: "Paneer Tikka", Price: money("180.00"), IsAvailable: true},
		f.naan:   {ID: f.naan, Name: "Butter Naan", Price: money("120.00"), IsAvailable: true},
	}}
	f.tables = &fakeTables{tables: map[uuid.UUID]*models.Table{
		f.tableID: {ID: f.tableID, TableNumber: 7, IsActive: true},
	}}
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	f.service = NewService(f.repo, f.menu, f.tables, f.bus, money("0.05"), money("0.05"), log)
	return f
}

func (f *fixture) createOrder(t *testing.T) *OrderResponse {
	t.Helper()
	resp, err := f.service.Create(context.Background(), CreateOrderInput{
		TableID:   f.tableID,
		SessionID: "sess-1",
		Items: []CreateOrderItemInput{
			{MenuItemID: f.paneer, Quantity: 2},
			{MenuItemID: f.naan, Quantity: 1},
		},
	})
	require.NoError(t, err)
	return resp
}

func TestCreateOrderComputesTotalsAndSnapshots(t *testing.T) {
	f := newFixture(t)
	resp := f.createOrder(t)

	assert.Equal(t, enums.OrderStatusCreated, resp.Status)
	assert.True(t, resp.Subtotal.Equal(money("480.00")))
	assert.True(t, resp.Tax.Equal(money("24.00")))
	assert.True(t, resp.ServiceCharge.Equal(money("24.00")))
	assert.True(t, resp.TotalAmount.Equal(money("528.00")))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Paneer Tikka", resp.Items[0].Name)
	assert.True(t, resp.Items[0].Price.Equal(money("180.00")))

	assert.Empty(t, f.bus.published, "creation must not emit bus events")
}

func TestCreateOrderRejectsUnavailableItems(t *testing.T) {
	f := newFixture(t)
	unavailable := uuid.New()
	f.menu.items[unavailable] = models.MenuItem{ID: unavailable, Name: "Sold Out", Price: money("50.00"), IsAvailable: false}

	_, err := f.service.Create(context.Background(), CreateOrderInput{
		TableID:   f.tableID,
		SessionID: "sess-1",
		Items: []CreateOrderItemInput{
			{MenuItemID: f.paneer, Quantity: 1},
			{MenuItemID: unavailable, Quantity: 1},
		},
	})
	require.Error(t, err)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())
	assert.Len(t, f.repo.orders, 0, "no partial order may be persisted")
}

func TestCreateOrderRejectsUnknownItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Create(context.Background(), CreateOrderInput{
		TableID:   f.tableID,
		SessionID: "sess-1",
		Items:     []CreateOrderItemInput{{MenuItemID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestCreateOrderRejectsInactiveTable(t *testing.T) {
	f := newFixture(t)
	f.tables.tables[f.tableID].IsActive = false

	_, err := f.service.Create(context.Background(), CreateOrderInput{
		TableID:   f.tableID,
		SessionID: "sess-1",
		Items:     []CreateOrderItemInput{{MenuItemID: f.paneer, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestUpdateStatusLegalTransitionPublishesBothTopics(t *testing.T) {
	f := newFixture(t)
	resp := f.createOrder(t)
	f.repo.orders[resp.ID].Status = enums.OrderStatusPaid

	updated, err := f.service.UpdateStatus(context.Background(), resp.ID, UpdateStatusInput{Status: "PREPARING"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, updated.Status)

	require.Len(t, f.bus.published, 2)
	topics := []string{f.bus.published[0].Topic, f.bus.published[1].Topic}
	assert.Contains(t, topics, notify.TopicKitchen)
	assert.Contains(t, topics, notify.OrderTopic(resp.ID))
	assert.Equal(t, notify.EventOrderStatusUpdate, f.bus.published[0].Msg.Event)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	f := newFixture(t)
	resp := f.createOrder(t)

	// CREATED -> READY skips PAID and PREPARING.
	_, err := f.service.UpdateStatus(context.Background(), resp.ID, UpdateStatusInput{Status: "READY"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeStateConflict, errors.As(err).Code())
	assert.Empty(t, f.bus.published)
}

func TestUpdateStatusRejectsTerminalState(t *testing.T) {
	f := newFixture(t)
	resp := f.createOrder(t)
	f.repo.orders[resp.ID].Status = enums.OrderStatusServed

	_, err := f.service.UpdateStatus(context.Background(), resp.ID, UpdateStatusInput{Status: "PREPARING"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeStateConflict, errors.As(err).Code())
}

func TestUpdateStatusConcurrentLoserGetsStateConflict(t *testing.T) {
	f := newFixture(t)
	resp := f.createOrder(t)
	f.repo.orders[resp.ID].Status = enums.OrderStatusPaid

	// Another writer advanced the row between read and update.
	f.repo.statusUpdate = func(uuid.UUID, enums.OrderStatus, enums.OrderStatus) (bool, error) {
		return false, nil
	}

	_, err := f.service.UpdateStatus(context.Background(), resp.ID, UpdateStatusInput{Status: "PREPARING"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeStateConflict, errors.As(err).Code())
	assert.Empty(t, f.bus.published, "the loser must not emit events")
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	f := newFixture(t)
	resp := f.createOrder(t)

	_, err := f.service.UpdateStatus(context.Background(), resp.ID, UpdateStatusInput{Status: "DELIVERED"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestGetUnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}
