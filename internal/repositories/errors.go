package repositories

import (
	"errors"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/store"
)

// translate converts store failures into the domain error taxonomy.
func translate(err error, entity, id, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, entity+" "+id+" not found", err)
	case errors.Is(err, store.ErrConflict):
		return apperr.Wrap(apperr.KindValidationFailed, entity+" already exists", err)
	default:
		return apperr.Wrap(apperr.KindStoreFailure, "failed to "+op+" "+entity, err)
	}
}
