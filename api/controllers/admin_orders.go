package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/servex-app/servex-backend/api/responses"
	"github.com/servex-app/servex-backend/api/validators"
	internalorders "github.com/servex-app/servex-backend/internal/orders"
	"github.com/servex-app/servex-backend/pkg/enums"
	pkgerrors "github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
)

const analyticsDefaultWindow = 30 * 24 * time.Hour

// AdminListOrders pages through every order with optional filters.
func AdminListOrders(service *internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := internalorders.ListParams{Page: page, PageSize: pageSize}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").WithDetails(map[string]any{"status": raw}))
				return
			}
			params.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("tableId")); raw != "" {
			tableID, err := validators.ParseURLUUID(raw, "tableId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			params.TableID = &tableID
		}

		result, err := service.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminAnalytics aggregates order volume and revenue. The window can be
// narrowed with days=N.
func AdminAnalytics(service *internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := validators.ParseQueryInt(r, "days", 0, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		window := analyticsDefaultWindow
		if days > 0 {
			window = time.Duration(days) * 24 * time.Hour
		}

		summary, err := service.Analytics(r.Context(), internalorders.AnalyticsParams{
			Since: time.Now().UTC().Add(-window),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
