// Package reservations is the read model for common-area bookings. The
// notification layer uses it to cross-check "reservation confirmed" events,
// which the backend is known to emit prematurely.
package reservations

import (
	"context"
	"strings"

	"github.com/condoway/client-go/internal/client/api"
	"github.com/condoway/client-go/internal/client/models"
	"github.com/condoway/client-go/internal/logging"
)

// Reader fetches the resident's reservations on demand.
type Reader struct {
	client api.Client
	unitID int64
	log    logging.Logger
}

func NewReader(client api.Client, unitID int64, log logging.Logger) *Reader {
	if log == nil {
		log = logging.Nop{}
	}
	return &Reader{client: client, unitID: unitID, log: log}
}

// Confirmed returns only the reservations that reached a confirmed state.
func (r *Reader) Confirmed(ctx context.Context) ([]models.Reservation, error) {
	all, err := r.client.ListReservations(ctx, r.unitID)
	if err != nil {
		return nil, err
	}
	confirmed := make([]models.Reservation, 0, len(all))
	for _, res := range all {
		if res.Confirmed() {
			confirmed = append(confirmed, res)
		}
	}
	return confirmed, nil
}

// ConfirmedMatch fetches the confirmed reservations and reports whether any
// of them matches the extracted venue/date/time triple.
func (r *Reader) ConfirmedMatch(ctx context.Context, venueFragment, date, clock string) (bool, error) {
	confirmed, err := r.Confirmed(ctx)
	if err != nil {
		return false, err
	}
	return MatchesConfirmed(confirmed, venueFragment, date, clock), nil
}

// MatchesConfirmed reports whether any reservation in list matches the
// venue fragment, date, and time extracted from a notification. Venue
// comparison is a case-insensitive substring match in either direction;
// date and time must match exactly.
func MatchesConfirmed(list []models.Reservation, venueFragment, date, clock string) bool {
	fragment := strings.ToLower(strings.TrimSpace(venueFragment))
	for _, res := range list {
		venue := strings.ToLower(strings.TrimSpace(res.Venue))
		if venue == "" || fragment == "" {
			continue
		}
		if !strings.Contains(venue, fragment) && !strings.Contains(fragment, venue) {
			continue
		}
		if res.Date == date && res.Time == clock {
			return true
		}
	}
	return false
}
