package orders

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/servex-app/servex-backend/pkg/db"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
)

const ordersSchema = `
CREATE TABLE tables (
	id TEXT PRIMARY KEY,
	table_number INTEGER NOT NULL UNIQUE,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	capacity INTEGER NOT NULL DEFAULT 4,
	qr_code_data TEXT,
	qr_code_url TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE orders (
	id TEXT PRIMARY KEY,
	table_id TEXT NOT NULL,
	subtotal NUMERIC NOT NULL,
	tax NUMERIC NOT NULL,
	service_charge NUMERIC NOT NULL,
	total_amount NUMERIC NOT NULL,
	status TEXT NOT NULL DEFAULT 'CREATED',
	session_id TEXT NOT NULL,
	customer_name TEXT,
	customer_phone TEXT,
	payment_id TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE order_items (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	menu_item_id TEXT NOT NULL,
	name TEXT NOT NULL,
	price NUMERIC NOT NULL,
	quantity INTEGER NOT NULL,
	instructions TEXT,
	created_at DATETIME
);
`

func newTestRepo(t *testing.T) (Repository, *db.Client) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	for _, stmt := range splitStatements(ordersSchema) {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	client := db.NewWithConn(conn)
	return NewRepository(client), client
}

func splitStatements(schema string) []string {
	var out []string
	start := 0
	for i, r := range schema {
		if r == ';' {
			out = append(out, schema[start:i+1])
			start = i + 1
		}
	}
	return out
}

var tableNumberSeq atomic.Int64

func seedOrder(t *testing.T, client *db.Client, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	table := &models.Table{ID: uuid.New(), TableNumber: int(tableNumberSeq.Add(1)), IsActive: true}
	require.NoError(t, client.DB().Create(table).Error)

	order := &models.Order{
		ID:            uuid.New(),
		TableID:       table.ID,
		Subtotal:      decimal.RequireFromString("480.00"),
		Tax:           decimal.RequireFromString("24.00"),
		ServiceCharge: decimal.RequireFromString("24.00"),
		TotalAmount:   decimal.RequireFromString("528.00"),
		Status:        status,
		SessionID:     "sess-" + uuid.NewString(),
		Items: []models.OrderItem{
			{ID: uuid.New(), MenuItemID: uuid.New(), Name: "Paneer Tikka", Price: decimal.RequireFromString("180.00"), Quantity: 2},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, client.DB().Create(order).Error)
	return order
}

func TestRepoCreateAndGet(t *testing.T) {
	repo, client := newTestRepo(t)
	seeded := seedOrder(t, client, enums.OrderStatusCreated, time.Now().UTC())

	got, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCreated, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Paneer Tikka", got.Items[0].Name)
	require.NotNil(t, got.Table)
}

func TestRepoGetMissingOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestRepoUpdateStatusIfIsConditional(t *testing.T) {
	repo, client := newTestRepo(t)
	order := seedOrder(t, client, enums.OrderStatusPaid, time.Now().UTC())

	won, err := repo.UpdateStatusIf(context.Background(), order.ID, enums.OrderStatusPaid, enums.OrderStatusPreparing)
	require.NoError(t, err)
	assert.True(t, won)

	// Second attempt with the stale precondition must lose.
	won, err = repo.UpdateStatusIf(context.Background(), order.ID, enums.OrderStatusPaid, enums.OrderStatusPreparing)
	require.NoError(t, err)
	assert.False(t, won)

	got, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, got.Status)
}

func TestRepoMarkPaidOnlyWinsOnce(t *testing.T) {
	repo, client := newTestRepo(t)
	order := seedOrder(t, client, enums.OrderStatusCreated, time.Now().UTC())
	paymentID := uuid.New()

	won, err := repo.MarkPaid(context.Background(), order.ID, paymentID)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkPaid(context.Background(), order.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, won, "a second payment must not re-mark the order")

	got, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, got.Status)
	require.NotNil(t, got.PaymentID)
	assert.Equal(t, paymentID, *got.PaymentID)
}

func TestRepoListKitchenActiveOrdersOldestFirst(t *testing.T) {
	repo, client := newTestRepo(t)
	now := time.Now().UTC()
	older := seedOrder(t, client, enums.OrderStatusPaid, now.Add(-2*time.Hour))
	newer := seedOrder(t, client, enums.OrderStatusPreparing, now.Add(-time.Hour))
	seedOrder(t, client, enums.OrderStatusCreated, now)
	seedOrder(t, client, enums.OrderStatusServed, now)

	rows, err := repo.ListKitchenActive(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2, "only PAID, PREPARING and READY belong on the kitchen board")
	assert.Equal(t, older.ID, rows[0].ID)
	assert.Equal(t, newer.ID, rows[1].ID)
}

func TestRepoListPaginatesAndFilters(t *testing.T) {
	repo, client := newTestRepo(t)
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		seedOrder(t, client, enums.OrderStatusServed, now.Add(time.Duration(-i)*time.Minute))
	}
	seedOrder(t, client, enums.OrderStatusCreated, now)

	status := enums.OrderStatusServed
	rows, total, err := repo.List(context.Background(), ListParams{Status: &status, Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, rows, 3)

	rows, _, err = repo.List(context.Background(), ListParams{Status: &status, Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRepoCancelStaleCreated(t *testing.T) {
	repo, client := newTestRepo(t)
	now := time.Now().UTC()
	stale := seedOrder(t, client, enums.OrderStatusCreated, now.Add(-time.Hour))
	fresh := seedOrder(t, client, enums.OrderStatusCreated, now)
	paid := seedOrder(t, client, enums.OrderStatusPaid, now.Add(-time.Hour))

	count, err := repo.CancelStaleCreated(context.Background(), now.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	got, err := repo.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, got.Status)

	got, err = repo.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCreated, got.Status)

	got, err = repo.GetByID(context.Background(), paid.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, got.Status)
}

func TestRepoAnalytics(t *testing.T) {
	repo, client := newTestRepo(t)
	now := time.Now().UTC()
	seedOrder(t, client, enums.OrderStatusServed, now.Add(-time.Hour))
	seedOrder(t, client, enums.OrderStatusPaid, now.Add(-time.Hour))
	seedOrder(t, client, enums.OrderStatusCreated, now.Add(-time.Hour))

	summary, err := repo.Analytics(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.TotalOrders)
	assert.True(t, summary.TotalRevenue.Equal(decimal.RequireFromString("1056.00")), "revenue = %s", summary.TotalRevenue)
	assert.True(t, summary.AvgOrderValue.Equal(decimal.RequireFromString("528.00")))
	assert.EqualValues(t, 1, summary.OrdersByStatus[enums.OrderStatusCreated])

	// Item quantities only count settled orders, so the CREATED seed's
	// two units stay out of the total.
	require.Len(t, summary.TopItems, 1)
	assert.Equal(t, "Paneer Tikka", summary.TopItems[0].Name)
	assert.EqualValues(t, 4, summary.TopItems[0].Quantity)
}
