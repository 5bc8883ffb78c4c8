package catalog

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servex-app/servex-backend/pkg/auth"
	"github.com/servex-app/servex-backend/pkg/config"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
)

type fakeCatalogRepo struct {
	menuItems map[uuid.UUID]*models.MenuItem
	tables    map[uuid.UUID]*models.Table
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		menuItems: make(map[uuid.UUID]*models.MenuItem),
		tables:    make(map[uuid.UUID]*models.Table),
	}
}

func (f *fakeCatalogRepo) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.menuItems[item.ID] = item
	return nil
}

func (f *fakeCatalogRepo) SaveMenuItem(_ context.Context, item *models.MenuItem) error {
	f.menuItems[item.ID] = item
	return nil
}

func (f *fakeCatalogRepo) GetMenuItemByID(_ context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, ok := f.menuItems[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "menu item not found")
	}
	clone := *item
	return &clone, nil
}

func (f *fakeCatalogRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, id := range ids {
		if item, ok := f.menuItems[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListMenu(_ context.Context, filter MenuFilter) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, item := range f.menuItems {
		if filter.AvailableOnly && !item.IsAvailable {
			continue
		}
		if filter.Category != nil && item.Category.String() != *filter.Category {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeCatalogRepo) CreateTable(_ context.Context, table *models.Table) error {
	if table.ID == uuid.Nil {
		table.ID = uuid.New()
	}
	f.tables[table.ID] = table
	return nil
}

func (f *fakeCatalogRepo) SaveTable(_ context.Context, table *models.Table) error {
	f.tables[table.ID] = table
	return nil
}

func (f *fakeCatalogRepo) GetTableByID(_ context.Context, id uuid.UUID) (*models.Table, error) {
	table, ok := f.tables[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "table not found")
	}
	clone := *table
	return &clone, nil
}

func (f *fakeCatalogRepo) ListTables(_ context.Context) ([]models.Table, error) {
	var out []models.Table
	for _, table := range f.tables {
		out = append(out, *table)
	}
	return out, nil
}

var testJWTConfig = config.JWTConfig{
	Secret:            "catalog-test-secret",
	Issuer:            "servex-test",
	ExpirationMinutes: 60,
}

func newTestService(t *testing.T) (*Service, *fakeCatalogRepo) {
	t.Helper()
	repo := newFakeCatalogRepo()
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	service := NewService(repo, testJWTConfig, 3*time.Hour, "https://app.example.com/", log)
	return service, repo
}

func TestCreateMenuItem(t *testing.T) {
	service, _ := newTestService(t)
	imageURL := "https://cdn.example.com/paneer-tikka.png"
	item, err := service.CreateMenuItem(context.Background(), CreateMenuItemInput{
		Name:     "  Paneer Tikka ",
		Category: "starters",
		Price:    decimal.RequireFromString("180.005"),
		ImageURL: &imageURL,
	})
	require.NoError(t, err)
	assert.Equal(t, "Paneer Tikka", item.Name)
	assert.Equal(t, enums.MenuCategoryStarters, item.Category)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("180.01")))
	assert.True(t, item.IsAvailable)
	require.NotNil(t, item.ImageURL)
	assert.Equal(t, imageURL, *item.ImageURL)
}

func TestCreateMenuItemRejectsUnknownCategory(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.CreateMenuItem(context.Background(), CreateMenuItemInput{
		Name:     "Mystery Dish",
		Category: "specials",
		Price:    decimal.RequireFromString("100.00"),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestUpdateMenuItemPatchesOnlyProvidedFields(t *testing.T) {
	service, repo := newTestService(t)
	item, err := service.CreateMenuItem(context.Background(), CreateMenuItemInput{
		Name:     "Butter Naan",
		Category: "mains",
		Price:    decimal.RequireFromString("120.00"),
	})
	require.NoError(t, err)

	unavailable := false
	imageURL := "https://cdn.example.com/butter-naan.png"
	updated, err := service.UpdateMenuItem(context.Background(), item.ID, UpdateMenuItemInput{
		IsAvailable: &unavailable,
		ImageURL:    &imageURL,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, "Butter Naan", updated.Name)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, imageURL, *updated.ImageURL)
	assert.True(t, repo.menuItems[item.ID].Price.Equal(decimal.RequireFromString("120.00")))
}

func TestCreateTableRendersQRCode(t *testing.T) {
	service, _ := newTestService(t)
	table, err := service.CreateTable(context.Background(), CreateTableInput{TableNumber: 7, IsActive: true})
	require.NoError(t, err)

	assert.Equal(t, 4, table.Capacity)
	assert.Equal(t, "https://app.example.com/t/"+table.ID.String(), table.QRCodeURL)
	assert.True(t, strings.HasPrefix(table.QRCodeData, "data:image/png;base64,"))
}

func TestRegenerateTableQR(t *testing.T) {
	service, repo := newTestService(t)
	table, err := service.CreateTable(context.Background(), CreateTableInput{TableNumber: 9, IsActive: true})
	require.NoError(t, err)

	repo.tables[table.ID].QRCodeData = "stale"

	refreshed, err := service.RegenerateTableQR(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/t/"+table.ID.String(), refreshed.QRCodeURL)
	assert.True(t, strings.HasPrefix(refreshed.QRCodeData, "data:image/png;base64,"))
	assert.Equal(t, refreshed.QRCodeData, repo.tables[table.ID].QRCodeData)
}

func TestResolveTableMintsSessionToken(t *testing.T) {
	service, _ := newTestService(t)
	table, err := service.CreateTable(context.Background(), CreateTableInput{TableNumber: 3, IsActive: true})
	require.NoError(t, err)

	resp, err := service.ResolveTable(context.Background(), table.ID)
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionToken)

	claims, err := auth.ParseTableSessionToken(testJWTConfig, resp.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, table.ID, claims.TableID)
}

func TestResolveInactiveTable(t *testing.T) {
	service, _ := newTestService(t)
	table, err := service.CreateTable(context.Background(), CreateTableInput{TableNumber: 9, IsActive: false})
	require.NoError(t, err)

	_, err = service.ResolveTable(context.Background(), table.ID)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestResolveUnknownTable(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.ResolveTable(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}
