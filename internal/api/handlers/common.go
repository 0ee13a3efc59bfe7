// Package handlers adapts HTTP requests onto the ledger services.
package handlers

import (
	"net/http"

	"github.com/baharkarakas/rewear-backend/internal/api/validate"
	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/middleware"
	"github.com/baharkarakas/rewear-backend/internal/services"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// actorFrom returns the caller stored by the auth middleware.
func actorFrom(r *http.Request) (services.Actor, error) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		return services.Actor{}, apperr.New(apperr.CodeUnauthorized, "authentication required")
	}
	role, _ := middleware.Role(r.Context())
	return services.Actor{UserID: uid, Role: role}, nil
}

func page(r *http.Request) (limit, offset int, err error) {
	if limit, err = validate.QueryInt(r, "limit", defaultPageSize, 1, maxPageSize); err != nil {
		return 0, 0, err
	}
	if offset, err = validate.QueryInt(r, "offset", 0, 0, 1<<30); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

type listResponse[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func newList[T any](data []T, limit, offset int) listResponse[T] {
	if data == nil {
		data = []T{}
	}
	return listResponse[T]{Data: data, Limit: limit, Offset: offset}
}
