package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/auth"
	"github.com/baharkarakas/rewear-backend/internal/idempotency"
	"github.com/baharkarakas/rewear-backend/internal/models"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpx.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Code
}

// whoami echoes the user the auth middleware stored.
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserID(r.Context())
	role, _ := Role(r.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"uid": uid, "role": role})
})

func TestAuth(t *testing.T) {
	tm := auth.NewTokenManager("access-secret", "refresh-secret", "rewear-test", time.Minute, time.Hour)
	pair, err := tm.GeneratePair("user-1", models.RoleAdmin)
	require.NoError(t, err)
	devID := uuid.NewString()

	tests := []struct {
		name   string
		env    string
		header string
		status int
		uid    string
		role   string
	}{
		{"missing header", "dev", "", http.StatusUnauthorized, "", ""},
		{"not bearer", "dev", "Basic abc", http.StatusUnauthorized, "", ""},
		{"access token", "prod", "Bearer " + pair.AccessToken, http.StatusOK, "user-1", models.RoleAdmin},
		{"lower-case scheme", "prod", "bearer " + pair.AccessToken, http.StatusOK, "user-1", models.RoleAdmin},
		{"refresh token rejected", "prod", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, "", ""},
		{"garbage", "prod", "Bearer abc.def.ghi", http.StatusUnauthorized, "", ""},
		{"dev token in dev", "dev", "Bearer dev-" + devID, http.StatusOK, devID, models.RoleUser},
		{"dev token not a uuid", "dev", "Bearer dev-alice", http.StatusUnauthorized, "", ""},
		{"dev token in prod", "prod", "Bearer dev-" + devID, http.StatusUnauthorized, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewAuthMiddleware(tm, tc.env, quietLogger())
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			m.Auth(whoami).ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			if tc.status != http.StatusOK {
				assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
				return
			}
			var got map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tc.uid, got["uid"])
			assert.Equal(t, tc.role, got["role"])
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name   string
		ctx    func(context.Context) context.Context
		status int
	}{
		{"anonymous", func(c context.Context) context.Context { return c }, http.StatusUnauthorized},
		{"user", func(c context.Context) context.Context { return WithUser(c, "u1", models.RoleUser) }, http.StatusForbidden},
		{"admin", func(c context.Context) context.Context { return WithUser(c, "u1", models.RoleAdmin) }, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			req = req.WithContext(tc.ctx(req.Context()))
			rec := httptest.NewRecorder()
			RequireAdmin(whoami).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "trace-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-42", seen)
}

func TestRecover(t *testing.T) {
	h := Recover(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
}

func TestRateLimit(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tb := newTokenBucket(2, func() time.Time { return now })
	h := rateLimit(tb)(whoami)

	call := func() int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, call())
	assert.Equal(t, http.StatusOK, call())
	assert.Equal(t, http.StatusTooManyRequests, call())

	now = now.Add(500 * time.Millisecond)
	assert.Equal(t, http.StatusOK, call())
	assert.Equal(t, http.StatusTooManyRequests, call())

	assert.Equal(t, http.StatusOK, serve(RateLimit(0)(whoami)))
}

func serve(h http.Handler) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec.Code
}

func TestLoggingSeesUserAndRoute(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(Logging(log))
	r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), "u-7", models.RoleUser)))
		})
	}).Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/abc", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/items/{id}", line["route"])
	assert.Equal(t, "u-7", line["user_id"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.Equal(t, "WARN", line["level"])
}

func TestIdempotency(t *testing.T) {
	store := idempotency.NewMemoryStore()
	var calls atomic.Int32
	h := Idempotency(store, time.Hour, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		httpx.WriteJSON(w, http.StatusCreated, map[string]any{"call": n, "echo": string(body)})
	}))

	send := func(uid, key, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/swaps", strings.NewReader(body))
		req = req.WithContext(WithUser(req.Context(), uid, models.RoleUser))
		if key != "" {
			req.Header.Set(HeaderIdempotencyKey, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("u1", "k1", `{"item_id":"a"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	replay := send("u1", "k1", `{"item_id":"a"}`)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(HeaderReplayed))
	assert.Equal(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", replay.Header().Get("Content-Type"))
	assert.EqualValues(t, 1, calls.Load())

	reused := send("u1", "k1", `{"item_id":"b"}`)
	assert.Equal(t, http.StatusConflict, reused.Code)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", errorCode(t, reused))

	other := send("u2", "k1", `{"item_id":"a"}`)
	assert.Equal(t, http.StatusCreated, other.Code)
	assert.EqualValues(t, 2, calls.Load())

	send("u1", "", `{"item_id":"a"}`)
	send("u1", "", `{"item_id":"a"}`)
	assert.EqualValues(t, 4, calls.Load())

	long := send("u1", strings.Repeat("k", maxIdempotencyKeyLen+1), `{}`)
	assert.Equal(t, http.StatusBadRequest, long.Code)
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	store := idempotency.NewMemoryStore()
	var calls atomic.Int32
	h := Idempotency(store, time.Hour, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	for _, want := range []int{http.StatusServiceUnavailable, http.StatusOK, http.StatusOK} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/swaps/x/accept", nil)
		req.Header.Set(HeaderIdempotencyKey, "retry-me")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code)
	}
	assert.EqualValues(t, 2, calls.Load())
}
