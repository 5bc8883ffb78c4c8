// Package payments exposes intent creation and callback verification.
package payments

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/servex-app/servex-backend/api/middleware"
	"github.com/servex-app/servex-backend/api/responses"
	"github.com/servex-app/servex-backend/api/validators"
	internalpayments "github.com/servex-app/servex-backend/internal/payments"
	pkgerrors "github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
)

// CreateIntent opens a gateway order for the given order. Requires a
// table session; the amount comes from the persisted order.
func CreateIntent(service *internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.TableIDFromContext(r.Context()) == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing table session"))
			return
		}

		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := service.CreateIntent(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}

// Verify settles a payment from the checkout callback.
func Verify(service *internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalpayments.VerifyInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := service.Verify(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// Key exposes the public gateway key id for checkout initialization.
func Key(service *internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, service.Key())
	}
}
