// Package idempotency remembers the response of a mutating request under the
// client's Idempotency-Key so a retry replays it instead of running twice.
package idempotency

import (
	"context"
	"strings"
	"time"
)

const keyNamespace = "rewear:idempotency"

// Record is a stored response plus the hash of the request that produced it.
type Record struct {
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

type Store interface {
	// Get reports ok=false when nothing is stored under key.
	Get(ctx context.Context, key string) (rec Record, ok bool, err error)
	// Save stores rec only if key is still free and reports whether it did.
	Save(ctx context.Context, key string, rec Record, ttl time.Duration) (bool, error)
}

// Key namespaces a client key by scope (user, method and path).
func Key(scope, id string) string {
	return keyNamespace + ":" + strings.TrimSpace(scope) + ":" + strings.TrimSpace(id)
}
