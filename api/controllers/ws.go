package controllers

import (
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/servex-app/servex-backend/api/responses"
	"github.com/servex-app/servex-backend/api/validators"
	"github.com/servex-app/servex-backend/internal/notify"
	pkgAuth "github.com/servex-app/servex-backend/pkg/auth"
	"github.com/servex-app/servex-backend/pkg/auth/session"
	"github.com/servex-app/servex-backend/pkg/config"
	"github.com/servex-app/servex-backend/pkg/enums"
	pkgerrors "github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// KitchenSocket streams kitchen events to the dashboard. Browsers
// cannot set headers on websocket upgrades, so the staff token rides in
// the token query parameter.
func KitchenSocket(bus *notify.Bus, jwtCfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.URL.Query().Get("token"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		claims, err := pkgAuth.ParseAccessToken(jwtCfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}
		if claims.Role != enums.StaffRoleKitchen && claims.Role != enums.StaffRoleAdmin {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
			return
		}
		if sessions != nil {
			ok, err := sessions.HasSession(r.Context(), claims.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
				return
			}
		}

		streamTopic(w, r, bus, notify.TopicKitchen, logg)
	}
}

// OrderSocket streams status updates for one order to the diner who
// placed it.
func OrderSocket(bus *notify.Bus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		streamTopic(w, r, bus, notify.OrderTopic(orderID), logg)
	}
}

func streamTopic(w http.ResponseWriter, r *http.Request, bus *notify.Bus, topic string, logg *logger.Logger) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The HTTP layer already enforces CORS; the upgrade re-checks
		// nothing extra here.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logg.Warn(logg.WithField(r.Context(), "topic", topic), "websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	sub := bus.Subscribe(topic)
	defer bus.Unsubscribe(sub)

	// CloseRead drains client frames and cancels the context when the
	// peer goes away.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg, ok := <-sub.C:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				return
			}
		}
	}
}
