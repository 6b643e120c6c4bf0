// Package models defines the resident-facing domain types exchanged with
// the CondoWay backend: user, occurrence, visitor, reservation, and
// notification records.
package models

import (
	"strconv"
	"strings"
	"time"
)

// User is the authenticated resident. UnitUserID is the apartment-scoped
// identity used by most list queries; older backend versions omit it from
// the login payload, in which case it is recovered from token claims.
type User struct {
	ID         int64  `json:"user_id"`
	UnitUserID int64  `json:"userap_id"`
	Name       string `json:"user_name"`
	Email      string `json:"user_email"`
	PhotoURL   string `json:"user_photo,omitempty"`
	Role       string `json:"user_role,omitempty"`
}

// Occurrence is a resident-reported issue (noise, maintenance, etc.).
type Occurrence struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Location    string `json:"location,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`

	// ClientRef identifies an optimistic local insert before the server
	// has assigned an ID. Never sent over the wire.
	ClientRef string `json:"-"`
}

// Identity returns a stable key for list reconciliation: the server ID when
// present, otherwise the local client reference.
func (o Occurrence) Identity() string {
	if o.ID != 0 {
		return strconv.FormatInt(o.ID, 10)
	}
	return o.ClientRef
}

// Visitor statuses as the backend spells them.
const (
	VisitorStatusPending    = "aguardando"
	VisitorStatusAuthorized = "autorizado"
	VisitorStatusCanceled   = "cancelado"
)

// Visitor is a pre-authorized guest entry.
type Visitor struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Document     string `json:"document,omitempty"`
	Status       string `json:"status"`
	ExpectedDate string `json:"expected_date"`
	ExpectedTime string `json:"expected_time"`
}

func (v Visitor) Identity() string {
	return strconv.FormatInt(v.ID, 10)
}

// Reservation is a common-area booking, the secondary read model used to
// cross-check reservation-confirmation notifications.
type Reservation struct {
	ID     int64  `json:"id"`
	Venue  string `json:"venue"`
	Date   string `json:"date"` // DD/MM/YYYY
	Time   string `json:"time"` // HH:MM
	Status string `json:"status"`
}

// Confirmed reports whether the reservation reached a confirmed state.
// The backend has used both Portuguese and English status spellings.
func (r Reservation) Confirmed() bool {
	s := strings.ToLower(r.Status)
	return strings.Contains(s, "confirm") || strings.Contains(s, "aprovad")
}

// RawNotification is the heterogeneous server record, kept verbatim as the
// passthrough source of a normalized notification.
type RawNotification struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	CreatedAt string `json:"created_at"`
	Read      bool   `json:"read"`
}

// Span is one run of notification text for rich rendering.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold"`
}

// Notification is the normalized, render-ready shape. Formatted, when
// non-empty, concatenates back to exactly Message.
type Notification struct {
	ID        int64
	Title     string
	Message   string
	Type      string
	Priority  string
	Timestamp time.Time
	Read      bool
	Formatted []Span
	Raw       RawNotification
}

func (n Notification) Identity() string {
	return strconv.FormatInt(n.ID, 10)
}
