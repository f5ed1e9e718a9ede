package services

import (
	"fmt"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
)

// normalizeFilter validates a listing filter coming from a query string.
func normalizeFilter(f *models.RequestFilter) error {
	if err := f.Normalize(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	return nil
}

// orEmpty keeps JSON listings as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// authorizeRequest returns ErrForbidden unless viewer may see the request.
func authorizeRequest(viewer *models.User, base *models.RequestBase) error {
	if !canViewRequest(viewer, base.Route()) {
		return fmt.Errorf("%w: you cannot view this request", pkg.ErrForbidden)
	}
	return nil
}
