package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servex-app/servex-backend/pkg/db"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/errors"
)

// Repository is the persistence surface for the menu and the tables.
type Repository interface {
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	SaveMenuItem(ctx context.Context, item *models.MenuItem) error
	GetMenuItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuItem, error)
	ListMenu(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error)

	CreateTable(ctx context.Context, table *models.Table) error
	SaveTable(ctx context.Context, table *models.Table) error
	GetTableByID(ctx context.Context, id uuid.UUID) (*models.Table, error)
	ListTables(ctx context.Context) ([]models.Table, error)
}

type gormRepository struct {
	client *db.Client
}

// NewRepository builds the GORM-backed catalog repository.
func NewRepository(client *db.Client) Repository {
	return &gormRepository{client: client}
}

func (r *gormRepository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if err := r.client.DB().WithContext(ctx).Create(item).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating menu item")
	}
	return nil
}

func (r *gormRepository) SaveMenuItem(ctx context.Context, item *models.MenuItem) error {
	if err := r.client.DB().WithContext(ctx).Save(item).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "saving menu item")
	}
	return nil
}

func (r *gormRepository) GetMenuItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.client.DB().WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "menu item not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading menu item")
	}
	return &item, nil
}

func (r *gormRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.MenuItem
	err := r.client.DB().WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading menu items")
	}
	return items, nil
}

func (r *gormRepository) ListMenu(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error) {
	query := r.client.DB().WithContext(ctx).Model(&models.MenuItem{})
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	var items []models.MenuItem
	if err := query.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing menu")
	}
	return items, nil
}

func (r *gormRepository) CreateTable(ctx context.Context, table *models.Table) error {
	if err := r.client.DB().WithContext(ctx).Create(table).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating table")
	}
	return nil
}

func (r *gormRepository) SaveTable(ctx context.Context, table *models.Table) error {
	if err := r.client.DB().WithContext(ctx).Save(table).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "saving table")
	}
	return nil
}

func (r *gormRepository) GetTableByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	err := r.client.DB().WithContext(ctx).First(&table, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "table not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading table")
	}
	return &table, nil
}

func (r *gormRepository) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := r.client.DB().WithContext(ctx).Order("table_number ASC").Find(&tables).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing tables")
	}
	return tables, nil
}
