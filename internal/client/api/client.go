// Package api contains the HTTP building blocks of the CondoWay client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the CondoWay backend: login, paginated resource lists, optimistic
//     mutations' server halves, and the reservation read model.
//  2. A concrete HTTP implementation (see HTTPClient) with a 30-second
//     timeout, JSON envelope decoding, and a bearer token attached from a
//     single TokenHolder slot.
//  3. A retry transport that performs exactly one silent re-login on a 401
//     and replays the original request with the fresh token (see
//     RecoveryHooks for the session-layer wiring).
//
// # Error Handling
//
// Non-2xx responses surface as *StatusError; errors.Is matches
// common.ErrUnauthorized for 401s and common.ErrUnavailable for transport
// failures.
package api

import (
	"context"

	"github.com/condoway/client-go/internal/client/models"
	"github.com/condoway/client-go/internal/client/paging"
)

type Client interface {
	// Login authenticates and returns the user record plus the bearer token.
	Login(ctx context.Context, email, password string) (*models.User, string, error)

	ListOccurrences(ctx context.Context, unitID int64, page, pageSize int) (paging.Page[models.Occurrence], error)
	CreateOccurrence(ctx context.Context, unitID int64, occ models.Occurrence) (models.Occurrence, error)

	ListVisitors(ctx context.Context, unitID int64, page, pageSize int) (paging.Page[models.Visitor], error)
	UpdateVisitorStatus(ctx context.Context, visitorID int64, status string) error

	ListNotifications(ctx context.Context, unitID int64, page, pageSize int) (paging.Page[models.RawNotification], error)
	MarkNotificationRead(ctx context.Context, notificationID int64) error

	ListReservations(ctx context.Context, unitID int64) ([]models.Reservation, error)
}
