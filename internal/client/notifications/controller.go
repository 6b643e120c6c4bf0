package notifications

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/condoway/client-go/internal/client/api"
	"github.com/condoway/client-go/internal/client/models"
	"github.com/condoway/client-go/internal/client/paging"
	"github.com/condoway/client-go/internal/client/reservations"
	"github.com/condoway/client-go/internal/logging"
)

const (
	DefaultPageSize = 20

	// SuppressionWindow is how long a locally created reservation shadows
	// matching confirmation notifications, long enough to cover the push
	// the backend emits for the resident's own action.
	SuppressionWindow = 30 * time.Second

	// refreshCacheWindow is the minimum interval between non-forced
	// refreshes; bursts of screen focus events collapse into one fetch.
	refreshCacheWindow = 10 * time.Second
)

// localReservation is a booking the resident just created on this device.
type localReservation struct {
	venue string
	date  string
	clock string
	at    time.Time
}

type suppressor struct {
	mu      sync.Mutex
	now     func() time.Time
	entries []localReservation
}

func (s *suppressor) note(venue, date, clock string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, localReservation{
		venue: strings.ToLower(strings.TrimSpace(venue)),
		date:  date,
		clock: clock,
		at:    s.now(),
	})
}

// matches reports whether a confirmation for venue/date/clock falls inside
// the suppression window of a locally noted booking. Expired entries are
// pruned on the way.
func (s *suppressor) matches(venue, date, clock string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	kept := s.entries[:0]
	hit := false
	fragment := strings.ToLower(strings.TrimSpace(venue))
	for _, e := range s.entries {
		if now.Sub(e.at) > SuppressionWindow {
			continue
		}
		kept = append(kept, e)
		if e.date != date || e.clock != clock {
			continue
		}
		if strings.Contains(e.venue, fragment) || strings.Contains(fragment, e.venue) {
			hit = true
		}
	}
	s.entries = kept
	return hit
}

// Controller is the notification feed: a paginated list whose pages are
// normalized, cross-validated against the reservation read model, and
// filtered for duplicates of the resident's own just-made bookings.
type Controller struct {
	client   api.Client
	unitID   int64
	bookings *reservations.Reader
	log      logging.Logger

	list     *paging.Controller[models.Notification]
	suppress suppressor

	mu        sync.Mutex
	now       func() time.Time
	lastFetch time.Time
}

func NewController(client api.Client, unitID int64, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop{}
	}
	c := &Controller{
		client:   client,
		unitID:   unitID,
		bookings: reservations.NewReader(client, unitID, log),
		log:      log,
		now:      time.Now,
	}
	c.suppress.now = time.Now
	c.list = paging.NewController(c.fetchPage, models.Notification.Identity, DefaultPageSize, log)
	return c
}

// fetchPage loads one raw page, normalizes it, and drops reservation
// confirmations that are either duplicates of a local booking or that the
// reservation list does not corroborate. The confirmed-reservation list is
// fetched at most once per page, and only when the page actually contains
// a confirmation; if that fetch fails, validation is skipped and every
// notification kept.
func (c *Controller) fetchPage(ctx context.Context, page, pageSize int) (paging.Page[models.Notification], error) {
	raw, err := c.client.ListNotifications(ctx, c.unitID, page, pageSize)
	if err != nil {
		return paging.Page[models.Notification]{}, err
	}

	var (
		confirmed        []models.Reservation
		confirmedFetched bool
		confirmedFailed  bool
	)
	out := make([]models.Notification, 0, len(raw.Items))
	for _, r := range raw.Items {
		n := Normalize(r)
		if !isReservationConfirmation(n) {
			out = append(out, n)
			continue
		}
		venue, date, clock, ok := extractReservationFacts(n.Message)
		if !ok {
			out = append(out, n)
			continue
		}
		if c.suppress.matches(venue, date, clock) {
			c.log.Debug(ctx, "suppressing confirmation for local booking", "notification_id", n.ID)
			continue
		}
		if !confirmedFetched && !confirmedFailed {
			confirmed, err = c.bookings.Confirmed(ctx)
			if err != nil {
				confirmedFailed = true
				c.log.Warn(ctx, "reservation cross-check unavailable, keeping notifications", "error", err)
			} else {
				confirmedFetched = true
			}
		}
		if confirmedFailed || reservations.MatchesConfirmed(confirmed, venue, date, clock) {
			out = append(out, n)
			continue
		}
		c.log.Debug(ctx, "dropping confirmation with no matching reservation", "notification_id", n.ID)
	}

	return paging.Page[models.Notification]{
		Items:       out,
		CurrentPage: raw.CurrentPage,
		TotalPages:  raw.TotalPages,
		TotalCount:  raw.TotalCount,
		PageSize:    raw.PageSize,
		HasMore:     raw.HasMore,
	}, nil
}

// Refresh reloads page 1. Unless forced, calls within the cache window of
// the previous successful fetch are absorbed without touching the network.
func (c *Controller) Refresh(ctx context.Context, force bool) error {
	c.mu.Lock()
	if !force && !c.lastFetch.IsZero() && c.now().Sub(c.lastFetch) < refreshCacheWindow {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	var err error
	if c.list.Snapshot().CurrentPage == 0 {
		err = c.list.LoadFirst(ctx)
	} else {
		err = c.list.Refresh(ctx)
	}
	if err == nil {
		c.mu.Lock()
		c.lastFetch = c.now()
		c.mu.Unlock()
	}
	return err
}

// LoadMore appends the next page of the feed.
func (c *Controller) LoadMore(ctx context.Context) error {
	return c.list.LoadMore(ctx)
}

// Snapshot returns the current feed state for rendering.
func (c *Controller) Snapshot() paging.Snapshot[models.Notification] {
	return c.list.Snapshot()
}

// UnreadCount reports how many loaded notifications are unread.
func (c *Controller) UnreadCount() int {
	n := 0
	for _, item := range c.list.Snapshot().Items {
		if !item.Read {
			n++
		}
	}
	return n
}

// NoteLocalReservation records a booking the resident just created so the
// backend's echo of it is filtered from the feed for the next 30 seconds.
func (c *Controller) NoteLocalReservation(venue, date, clock string) {
	c.suppress.note(venue, date, clock)
}

// MarkAsRead flips the notification to read locally and tells the server.
// The server call is best effort: failures are logged and the local state
// stands, reconciled by the next refresh.
func (c *Controller) MarkAsRead(ctx context.Context, notificationID int64) {
	c.list.UpdateOptimistic(strconv.FormatInt(notificationID, 10), markRead)
	if err := c.client.MarkNotificationRead(ctx, notificationID); err != nil {
		c.log.Warn(ctx, "mark-as-read not acknowledged", "notification_id", notificationID, "error", err)
	}
}

// MarkAllAsRead flips every unread notification locally, then notifies the
// server one by one. A failing item is logged and the rest still proceed.
func (c *Controller) MarkAllAsRead(ctx context.Context) {
	var unread []int64
	for _, item := range c.list.Snapshot().Items {
		if !item.Read {
			unread = append(unread, item.ID)
		}
	}
	for _, id := range unread {
		c.list.UpdateOptimistic(strconv.FormatInt(id, 10), markRead)
	}
	for _, id := range unread {
		if err := c.client.MarkNotificationRead(ctx, id); err != nil {
			c.log.Warn(ctx, "mark-as-read not acknowledged", "notification_id", id, "error", err)
		}
	}
}

func markRead(n models.Notification) models.Notification {
	n.Read = true
	return n
}
