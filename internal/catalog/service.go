// Package catalog manages the menu and the physical tables, including
// the QR codes diners scan to start a session.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/servex-app/servex-backend/pkg/auth"
	"github.com/servex-app/servex-backend/pkg/config"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
)

// Service implements menu and table management.
type Service struct {
	repo        Repository
	jwtCfg      config.JWTConfig
	sessionTTL  time.Duration
	frontendURL string
	log         *logger.Logger
}

func NewService(repo Repository, jwtCfg config.JWTConfig, sessionTTL time.Duration, frontendURL string, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		jwtCfg:      jwtCfg,
		sessionTTL:  sessionTTL,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// ListMenu returns the menu for diners, restricted to available items.
func (s *Service) ListMenu(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error) {
	if filter.Category != nil {
		if _, err := enums.ParseMenuCategory(*filter.Category); err != nil {
			return nil, errors.New(errors.CodeValidation, "unknown menu category").
				WithDetails(map[string]any{"category": *filter.Category})
		}
	}
	return s.repo.ListMenu(ctx, filter)
}

// GetByIDs resolves menu items for order pricing.
func (s *Service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuItem, error) {
	return s.repo.GetByIDs(ctx, ids)
}

// CreateMenuItem adds a new dish to the menu.
func (s *Service) CreateMenuItem(ctx context.Context, input CreateMenuItemInput) (*models.MenuItem, error) {
	category, err := enums.ParseMenuCategory(input.Category)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "unknown menu category").
			WithDetails(map[string]any{"category": input.Category})
	}
	if input.Price.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "price must not be negative")
	}

	item := &models.MenuItem{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    category,
		Price:       input.Price.Round(2),
		IsAvailable: true,
		Tags:        input.Tags,
		ImageURL:    input.ImageURL,
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	s.log.Info(s.log.WithField(ctx, "menu_item_id", item.ID.String()), "menu item created")
	return item, nil
}

// UpdateMenuItem patches an existing dish. Price edits never touch
// already placed orders because orders snapshot the price at creation.
func (s *Service) UpdateMenuItem(ctx context.Context, id uuid.UUID, input UpdateMenuItemInput) (*models.MenuItem, error) {
	item, err := s.repo.GetMenuItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = input.Description
	}
	if input.Category != nil {
		category, err := enums.ParseMenuCategory(*input.Category)
		if err != nil {
			return nil, errors.New(errors.CodeValidation, "unknown menu category").
				WithDetails(map[string]any{"category": *input.Category})
		}
		item.Category = category
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, errors.New(errors.CodeValidation, "price must not be negative")
		}
		item.Price = input.Price.Round(2)
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}
	if input.Tags != nil {
		item.Tags = input.Tags
	}
	if input.ImageURL != nil {
		item.ImageURL = input.ImageURL
	}

	if err := s.repo.SaveMenuItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateTable registers a table and renders its QR code.
func (s *Service) CreateTable(ctx context.Context, input CreateTableInput) (*models.Table, error) {
	table := &models.Table{
		ID:          uuid.New(),
		TableNumber: input.TableNumber,
		IsActive:    input.IsActive,
		Capacity:    input.Capacity,
	}
	if table.Capacity <= 0 {
		table.Capacity = 4
	}

	landing := tableLandingURL(s.frontendURL, table.ID)
	qr, err := renderQRCode(landing)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "rendering table qr code")
	}
	table.QRCodeURL = landing
	table.QRCodeData = qr

	if err := s.repo.CreateTable(ctx, table); err != nil {
		return nil, err
	}
	s.log.Info(s.log.WithTableID(ctx, table.ID.String()), "table created")
	return table, nil
}

// SetTableActive flips whether a table accepts new sessions.
func (s *Service) SetTableActive(ctx context.Context, id uuid.UUID, active bool) (*models.Table, error) {
	table, err := s.repo.GetTableByID(ctx, id)
	if err != nil {
		return nil, err
	}
	table.IsActive = active
	if err := s.repo.SaveTable(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

// RegenerateTableQR re-renders a table's QR code, picking up the current
// frontend URL. Existing printed codes keep working since the table id
// does not change.
func (s *Service) RegenerateTableQR(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	table, err := s.repo.GetTableByID(ctx, id)
	if err != nil {
		return nil, err
	}

	landing := tableLandingURL(s.frontendURL, table.ID)
	qr, err := renderQRCode(landing)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "rendering table qr code")
	}
	table.QRCodeURL = landing
	table.QRCodeData = qr

	if err := s.repo.SaveTable(ctx, table); err != nil {
		return nil, err
	}
	s.log.Info(s.log.WithTableID(ctx, table.ID.String()), "table qr regenerated")
	return table, nil
}

// ListTables returns every registered table for the admin view.
func (s *Service) ListTables(ctx context.Context) ([]models.Table, error) {
	return s.repo.ListTables(ctx)
}

// GetTableByID resolves a table row, used by order creation.
func (s *Service) GetTableByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	return s.repo.GetTableByID(ctx, id)
}

// ResolveTable handles a scanned QR code: it returns the table and
// mints the session token that authorizes ordering from it. Inactive
// tables do not get a session.
func (s *Service) ResolveTable(ctx context.Context, id uuid.UUID) (*TableSessionResponse, error) {
	table, err := s.repo.GetTableByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !table.IsActive {
		return nil, errors.New(errors.CodeValidation, "table is not accepting orders")
	}

	token, err := auth.MintTableSessionToken(s.jwtCfg, s.sessionTTL, time.Now().UTC(), table.ID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting table session token")
	}
	return &TableSessionResponse{Table: table, SessionToken: token}, nil
}
