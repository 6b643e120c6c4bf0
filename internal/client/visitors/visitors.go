// Package visitors binds the paginated list controller to the
// pre-authorized visitor resource. Status changes are applied locally
// first and rolled back if the server rejects them.
package visitors

import (
	"context"
	"fmt"
	"strconv"

	"github.com/condoway/client-go/internal/client/api"
	"github.com/condoway/client-go/internal/client/models"
	"github.com/condoway/client-go/internal/client/paging"
	"github.com/condoway/client-go/internal/logging"
)

const DefaultPageSize = 20

type Controller struct {
	*paging.Controller[models.Visitor]

	client api.Client
	log    logging.Logger
}

func NewController(client api.Client, unitID int64, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop{}
	}
	fetch := func(ctx context.Context, page, pageSize int) (paging.Page[models.Visitor], error) {
		return client.ListVisitors(ctx, unitID, page, pageSize)
	}
	return &Controller{
		Controller: paging.NewController(fetch, models.Visitor.Identity, DefaultPageSize, log),
		client:     client,
		log:        log,
	}
}

// Authorize marks the visitor as cleared for entry.
func (c *Controller) Authorize(ctx context.Context, visitorID int64) error {
	return c.setStatus(ctx, visitorID, models.VisitorStatusAuthorized)
}

// Cancel revokes a pending or authorized visit.
func (c *Controller) Cancel(ctx context.Context, visitorID int64) error {
	return c.setStatus(ctx, visitorID, models.VisitorStatusCanceled)
}

func (c *Controller) setStatus(ctx context.Context, visitorID int64, status string) error {
	id := strconv.FormatInt(visitorID, 10)

	var prev string
	found := c.UpdateOptimistic(id, func(v models.Visitor) models.Visitor {
		prev = v.Status
		v.Status = status
		return v
	})

	if err := c.client.UpdateVisitorStatus(ctx, visitorID, status); err != nil {
		if found {
			c.UpdateOptimistic(id, func(v models.Visitor) models.Visitor {
				v.Status = prev
				return v
			})
		}
		return fmt.Errorf("updating visitor %d status: %w", visitorID, err)
	}
	return nil
}
