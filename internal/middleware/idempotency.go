package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/idempotency"
	"github.com/baharkarakas/rewear-backend/internal/metrics"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 128
	maxIdempotentBody    = 1 << 20
)

// Idempotency replays the stored response when a request repeats its
// Idempotency-Key. Requests without the header pass straight through. Keys
// are scoped per user, method and path; reusing one with a different body is
// rejected. 5xx responses are not stored so the client can retry.
func Idempotency(store idempotency.Store, ttl time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
			if clientKey == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			if len(clientKey) > maxIdempotencyKeyLen {
				httpx.WriteAppError(w, log, apperr.Newf(apperr.CodeValidation, "%s longer than %d characters", HeaderIdempotencyKey, maxIdempotencyKeyLen))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody+1))
			if err != nil {
				httpx.WriteAppError(w, log, apperr.Wrap(apperr.CodeValidation, err, "read request body"))
				return
			}
			if len(body) > maxIdempotentBody {
				httpx.WriteAppError(w, log, apperr.New(apperr.CodeValidation, "request body too large"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := hashRequest(r.Method, r.URL.Path, body)
			key := idempotency.Key(scopeOf(r), clientKey)

			stored, ok, err := store.Get(r.Context(), key)
			if err != nil {
				httpx.WriteAppError(w, log, apperr.Wrap(apperr.CodeInternal, err, "check idempotency key"))
				return
			}
			if ok {
				if stored.RequestHash != hash {
					httpx.WriteAppError(w, log, apperr.New(apperr.CodeIdempotency, "idempotency key reused with a different request"))
					return
				}
				metrics.IdempotentReplaysTotal.Inc()
				writeStored(w, stored)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.Status()
			if status >= http.StatusInternalServerError {
				return
			}
			rec := idempotency.Record{
				Status:      status,
				Body:        capture.body.Bytes(),
				ContentType: capture.Header().Get("Content-Type"),
				RequestHash: hash,
			}
			if _, err := store.Save(r.Context(), key, rec, ttl); err != nil && log != nil {
				log.Error("persist idempotency record", "err", err, "request_id", RequestIDFrom(r.Context()))
			}
		})
	}
}

func scopeOf(r *http.Request) string {
	uid, _ := UserID(r.Context())
	return strings.Join([]string{uid, r.Method, r.URL.Path}, "|")
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func writeStored(w http.ResponseWriter, rec idempotency.Record) {
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set(HeaderReplayed, "true")
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}

type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) Status() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
