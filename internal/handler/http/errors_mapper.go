package http

import (
	"errors"
	"net/http"

	"github.com/askarin/fieldvault/internal/export"
	"github.com/askarin/fieldvault/internal/gate"
	"github.com/askarin/fieldvault/internal/keychain"
	"github.com/askarin/fieldvault/internal/store"
)

var errorStatusMap = map[error]int{
	keychain.ErrWeakSecret: http.StatusBadRequest,
	gate.ErrWrongSecret:    http.StatusUnauthorized,

	store.ErrRecordNotFound:     http.StatusNotFound,
	store.ErrVerifierNotFound:   http.StatusNotFound,
	store.ErrVerifierAlreadySet: http.StatusConflict,
	store.ErrValidation:         http.StatusBadRequest,
	store.ErrStoreUnavailable:   http.StatusServiceUnavailable,

	export.ErrMalformedBundle: http.StatusBadRequest,

	ErrInvalidRequestBody: http.StatusBadRequest,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
