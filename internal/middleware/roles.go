package middleware

import (
	"net/http"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/models"
)

// RequireRole wraps a handler and allows only the given role. It must run
// after Auth.
func RequireRole(need string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserID(r.Context()); !ok {
				httpx.WriteAppError(w, nil, apperr.New(apperr.CodeUnauthorized, "authentication required"))
				return
			}
			if role, _ := Role(r.Context()); role != need {
				httpx.WriteAppError(w, nil, apperr.Newf(apperr.CodeForbidden, "%s role required", need))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var RequireAdmin = RequireRole(models.RoleAdmin)
