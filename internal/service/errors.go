package service

import (
	"errors"
	"fmt"

	"github.com/emrgen/docrepo/internal/store"
)

var (
	// ErrValidation is returned when a request misses a required field. The
	// store is never touched for an invalid request.
	ErrValidation = errors.New("validation failed")

	// ErrNoCurrentVersion is returned when a lineage has no current version
	// to build on, e.g. after every version was removed.
	ErrNoCurrentVersion = fmt.Errorf("%w: lineage has no current version", store.ErrStateConflict)
	// ErrVersionFromDeleted is returned when creating a version on a lineage
	// whose current version is soft-deleted.
	ErrVersionFromDeleted = fmt.Errorf("%w: current version is deleted", store.ErrStateConflict)
	// ErrDocumentDeleted is returned when reading content of a soft-deleted
	// document.
	ErrDocumentDeleted = fmt.Errorf("%w: document is deleted", store.ErrStateConflict)
)

func validationError(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

func invalidIDError(field string) error {
	return fmt.Errorf("%w: %s must be a valid uuid", ErrValidation, field)
}
