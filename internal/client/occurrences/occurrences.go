// Package occurrences binds the paginated list controller to the
// resident-reported occurrence resource and implements the optimistic
// reporting flow.
package occurrences

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/condoway/client-go/internal/client/api"
	"github.com/condoway/client-go/internal/client/models"
	"github.com/condoway/client-go/internal/client/paging"
	"github.com/condoway/client-go/internal/logging"
)

const DefaultPageSize = 20

// Controller lists the unit's occurrences and supports reporting new ones
// with an optimistic local insert.
type Controller struct {
	*paging.Controller[models.Occurrence]

	client api.Client
	unitID int64
	log    logging.Logger
}

func NewController(client api.Client, unitID int64, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop{}
	}
	fetch := func(ctx context.Context, page, pageSize int) (paging.Page[models.Occurrence], error) {
		return client.ListOccurrences(ctx, unitID, page, pageSize)
	}
	return &Controller{
		Controller: paging.NewController(fetch, models.Occurrence.Identity, DefaultPageSize, log),
		client:     client,
		unitID:     unitID,
		log:        log,
	}
}

// Report inserts the occurrence locally, submits it, and reconciles the
// local entry with the server-assigned record. On server failure the
// optimistic entry is removed and the error returned, so the list never
// keeps a phantom row.
func (c *Controller) Report(ctx context.Context, occ models.Occurrence) (models.Occurrence, error) {
	occ.ID = 0
	occ.ClientRef = uuid.NewString()
	c.AddOptimistic(occ)

	created, err := c.client.CreateOccurrence(ctx, c.unitID, occ)
	if err != nil {
		c.RemoveOptimistic(occ.ClientRef)
		return models.Occurrence{}, fmt.Errorf("creating occurrence: %w", err)
	}
	c.UpdateOptimistic(occ.ClientRef, func(models.Occurrence) models.Occurrence {
		return created
	})
	return created, nil
}
