package services

import (
	"errors"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

// translate maps storage errors onto the ledger taxonomy. Errors that already
// carry a code pass through untouched.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if apperr.As(err) != nil {
		return err
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return apperr.New(apperr.CodeNotFound, what+" not found")
	case errors.Is(err, repo.ErrConflict):
		return apperr.Wrap(apperr.CodeConflict, err, "concurrent update on "+what)
	case errors.Is(err, repo.ErrDuplicate):
		return apperr.Wrap(apperr.CodeConflict, err, what+" already exists")
	}
	return apperr.Wrap(apperr.CodeInternal, err, "storage failure")
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
