package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/servex-app/servex-backend/pkg/db"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
)

// Repository is the persistence surface for orders. Status transitions
// are conditional updates so that concurrent writers race on the
// database row instead of on application locks.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
	MarkPaid(ctx context.Context, id, paymentID uuid.UUID) (bool, error)
	ListKitchenActive(ctx context.Context) ([]models.Order, error)
	List(ctx context.Context, params ListParams) ([]models.Order, int64, error)
	Analytics(ctx context.Context, since time.Time) (*AnalyticsSummary, error)
	CancelStaleCreated(ctx context.Context, cutoff time.Time) (int64, error)
}

const topItemsLimit = 10

// paidOrLaterStatuses are the orders that count toward revenue.
var paidOrLaterStatuses = []enums.OrderStatus{
	enums.OrderStatusPaid,
	enums.OrderStatusPreparing,
	enums.OrderStatusReady,
	enums.OrderStatusServed,
}

type gormRepository struct {
	client *db.Client
}

// NewRepository builds the GORM-backed order repository.
func NewRepository(client *db.Client) Repository {
	return &gormRepository{client: client}
}

func (r *gormRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.client.DB().WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating order")
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.client.DB().WithContext(ctx).
		Preload("Items").
		Preload("Table").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading order")
	}
	return &order, nil
}

// UpdateStatusIf moves the order from one status to another only when
// the row is still in the expected state. The false return means some
// other writer got there first.
func (r *gormRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.client.DB().WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, errors.Wrap(errors.CodeDependency, res.Error, "updating order status")
	}
	return res.RowsAffected == 1, nil
}

// MarkPaid performs the CREATED to PAID transition and records the
// winning payment in one conditional update.
func (r *gormRepository) MarkPaid(ctx context.Context, id, paymentID uuid.UUID) (bool, error) {
	res := r.client.DB().WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusCreated).
		Updates(map[string]any{
			"status":     enums.OrderStatusPaid,
			"payment_id": paymentID,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, errors.Wrap(errors.CodeDependency, res.Error, "marking order paid")
	}
	return res.RowsAffected == 1, nil
}

func (r *gormRepository) ListKitchenActive(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.client.DB().WithContext(ctx).
		Preload("Items").
		Preload("Table").
		Where("status IN ?", enums.KitchenActiveOrderStatuses()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing kitchen orders")
	}
	return rows, nil
}

func (r *gormRepository) List(ctx context.Context, params ListParams) ([]models.Order, int64, error) {
	params.normalize()

	query := r.client.DB().WithContext(ctx).Model(&models.Order{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.TableID != nil {
		query = query.Where("table_id = ?", *params.TableID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(errors.CodeDependency, err, "counting orders")
	}

	var rows []models.Order
	err := query.
		Preload("Items").
		Preload("Table").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeDependency, err, "listing orders")
	}
	return rows, total, nil
}

func (r *gormRepository) Analytics(ctx context.Context, since time.Time) (*AnalyticsSummary, error) {
	type statusRow struct {
		Status enums.OrderStatus
		Count  int64
	}
	var byStatus []statusRow
	err := r.client.DB().WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "aggregating order counts")
	}

	type revenueRow struct {
		Revenue decimal.Decimal
		Count   int64
	}
	var revenue revenueRow
	err = r.client.DB().WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS count").
		Where("created_at >= ? AND status IN ?", since, paidOrLaterStatuses).
		Scan(&revenue).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "aggregating revenue")
	}

	summary := &AnalyticsSummary{
		OrdersByStatus: make(map[enums.OrderStatus]int64, len(byStatus)),
		Since:          since,
	}
	for _, row := range byStatus {
		summary.OrdersByStatus[row.Status] = row.Count
		summary.TotalOrders += row.Count
	}
	summary.TotalRevenue = revenue.Revenue
	if revenue.Count > 0 {
		summary.AvgOrderValue = revenue.Revenue.Div(decimal.NewFromInt(revenue.Count)).Round(2)
	} else {
		summary.AvgOrderValue = decimal.Zero
	}

	err = r.client.DB().WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_items.name, SUM(order_items.quantity) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.status IN ?", since, paidOrLaterStatuses).
		Group("order_items.name").
		Order("quantity DESC").
		Limit(topItemsLimit).
		Scan(&summary.TopItems).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "aggregating top items")
	}
	return summary, nil
}

// CancelStaleCreated moves CREATED orders older than cutoff to
// CANCELLED and reports how many rows were touched.
func (r *gormRepository) CancelStaleCreated(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.client.DB().WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ? AND created_at < ?", enums.OrderStatusCreated, cutoff).
		Updates(map[string]any{"status": enums.OrderStatusCancelled, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return 0, errors.Wrap(errors.CodeDependency, res.Error, "cancelling stale orders")
	}
	return res.RowsAffected, nil
}
