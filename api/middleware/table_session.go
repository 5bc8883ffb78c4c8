package middleware

import (
	"net/http"
	"strings"

	"github.com/servex-app/servex-backend/api/responses"
	pkgAuth "github.com/servex-app/servex-backend/pkg/auth"
	"github.com/servex-app/servex-backend/pkg/config"
	pkgerrors "github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
)

const tableSessionHeader = "X-Table-Session"

// TableSession validates the diner's table session token and binds the
// request to the table it was minted for. Order creation trusts this
// binding instead of anything in the request body.
func TableSession(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(tableSessionHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing table session"))
				return
			}

			claims, err := pkgAuth.ParseTableSessionToken(cfg, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid table session"))
				return
			}

			ctx := WithTableSession(r.Context(), claims.TableID, claims.ID)
			if logg != nil {
				ctx = logg.WithTableID(ctx, claims.TableID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
