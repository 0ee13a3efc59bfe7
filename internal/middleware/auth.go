package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/auth"
	"github.com/baharkarakas/rewear-backend/internal/models"
)

const devTokenPrefix = "dev-"

type AuthMiddleware struct {
	TM     *auth.TokenManager
	AppEnv string
	Log    *slog.Logger
}

func NewAuthMiddleware(tm *auth.TokenManager, appEnv string, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{TM: tm, AppEnv: appEnv, Log: log}
}

// Auth accepts `Bearer <access JWT>`. In dev it also accepts `Bearer dev-<uuid>`
// and treats the caller as a plain user.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
			httpx.WriteAppError(w, m.Log, apperr.New(apperr.CodeUnauthorized, "missing bearer token"))
			return
		}
		token := strings.TrimSpace(ah[7:])

		if m.AppEnv == "dev" && strings.HasPrefix(token, devTokenPrefix) {
			uid := strings.TrimPrefix(token, devTokenPrefix)
			if _, err := uuid.Parse(uid); err != nil {
				httpx.WriteAppError(w, m.Log, apperr.New(apperr.CodeUnauthorized, "invalid dev token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), uid, models.RoleUser)))
			return
		}

		claims, err := m.TM.ParseAccess(token)
		if err != nil {
			httpx.WriteAppError(w, m.Log, apperr.New(apperr.CodeUnauthorized, "invalid access token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Role)))
	})
}
