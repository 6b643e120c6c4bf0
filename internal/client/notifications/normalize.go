// Package notifications turns the backend's heterogeneous notification
// records into a normalized, render-ready feed: category mapping, message
// date/time rewriting, bold-span formatting, duplicate suppression for
// locally created reservations, and cross-validation of reservation
// confirmations against the bookings the server actually holds.
package notifications

import (
	"regexp"
	"strings"
	"time"

	"github.com/condoway/client-go/internal/client/models"
)

// typeCategories maps backend type tags (Portuguese, free-form) onto the
// canonical categories the UI switches on. Matching is by substring so
// variants like "reserva_confirmada" still land in the right bucket.
var typeCategories = []struct{ match, category string }{
	{"reserva", "reservation"},
	{"encomenda", "delivery"},
	{"entrega", "delivery"},
	{"visitante", "visitor"},
	{"visita", "visitor"},
	{"ocorrência", "occurrence"},
	{"ocorrencia", "occurrence"},
	{"aviso", "notice"},
	{"comunicado", "notice"},
}

// Category maps a raw type tag to its canonical category. Unknown tags
// pass through lowercased so the UI can still group them.
func Category(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, tc := range typeCategories {
		if strings.Contains(s, tc.match) {
			return tc.category
		}
	}
	return s
}

var (
	isoDateRe   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	monthDateRe = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b`)
	longTimeRe  = regexp.MustCompile(`\b(\d{2}:\d{2}):\d{2}\b`)
	timezoneRe  = regexp.MustCompile(`\s*\([^)]*(?:Standard Time|Daylight Time|Summer Time|Horário Padrão|Horário de Verão|Hora Padrão)[^)]*\)`)

	brDateRe    = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)
	shortTimeRe = regexp.MustCompile(`\b\d{2}:\d{2}\b`)
	quotedRe    = regexp.MustCompile(`"[^"]+"|'[^']+'|“[^”]+”`)
)

// RewriteMessage converts server-side date and time spellings inside a
// message into the local display convention: ISO and English long dates
// become DD/MM/YYYY, HH:MM:SS becomes HH:MM, and parenthesized timezone
// names are dropped. Anything that fails to parse is left untouched.
func RewriteMessage(msg string) string {
	out := isoDateRe.ReplaceAllStringFunc(msg, func(m string) string {
		t, err := time.Parse("2006-01-02", m)
		if err != nil {
			return m
		}
		return t.Format("02/01/2006")
	})
	out = monthDateRe.ReplaceAllStringFunc(out, func(m string) string {
		t, err := time.Parse("January 2, 2006", m)
		if err != nil {
			return m
		}
		return t.Format("02/01/2006")
	})
	out = longTimeRe.ReplaceAllString(out, "$1")
	out = timezoneRe.ReplaceAllString(out, "")
	return out
}

type span struct{ start, end int }

func overlaps(a span, chosen []span) bool {
	for _, b := range chosen {
		if a.start < b.end && b.start < a.end {
			return true
		}
	}
	return false
}

// FormatSpans splits a message into plain and bold runs. Quoted substrings
// are bolded with precedence over dates and times, which are bolded where
// they do not fall inside an already chosen run. Concatenating the
// returned spans always reproduces the message exactly. Returns nil when
// nothing in the message calls for emphasis.
func FormatSpans(msg string) []models.Span {
	var chosen []span
	for _, loc := range quotedRe.FindAllStringIndex(msg, -1) {
		chosen = append(chosen, span{loc[0], loc[1]})
	}
	for _, re := range []*regexp.Regexp{brDateRe, shortTimeRe} {
		for _, loc := range re.FindAllStringIndex(msg, -1) {
			s := span{loc[0], loc[1]}
			if !overlaps(s, chosen) {
				chosen = append(chosen, s)
			}
		}
	}
	if len(chosen) == 0 {
		return nil
	}
	sortSpans(chosen)

	var out []models.Span
	pos := 0
	for _, s := range chosen {
		if s.start > pos {
			out = append(out, models.Span{Text: msg[pos:s.start]})
		}
		out = append(out, models.Span{Text: msg[s.start:s.end], Bold: true})
		pos = s.end
	}
	if pos < len(msg) {
		out = append(out, models.Span{Text: msg[pos:]})
	}
	return out
}

func sortSpans(s []span) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].start < s[j-1].start; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize converts one raw server record into the render-ready shape.
// The raw record is kept verbatim for anything the normalization loses.
func Normalize(raw models.RawNotification) models.Notification {
	msg := RewriteMessage(raw.Message)
	n := models.Notification{
		ID:        raw.ID,
		Title:     raw.Title,
		Message:   msg,
		Type:      Category(raw.Type),
		Priority:  strings.ToLower(strings.TrimSpace(raw.Priority)),
		Read:      raw.Read,
		Formatted: FormatSpans(msg),
		Raw:       raw,
	}
	if ts, ok := parseTimestamp(raw.CreatedAt); ok {
		n.Timestamp = ts
	}
	return n
}

// isReservationConfirmation heuristically identifies "your reservation was
// confirmed" notifications, either by the raw type tag or by the message
// mentioning both a reservation and a confirmation.
func isReservationConfirmation(n models.Notification) bool {
	rawType := strings.ToLower(n.Raw.Type)
	if strings.Contains(rawType, "reserva") && strings.Contains(rawType, "confirm") {
		return true
	}
	lower := strings.ToLower(n.Message)
	return strings.Contains(lower, "reserva") && strings.Contains(lower, "confirm")
}

// extractReservationFacts pulls the venue (first quoted substring), date,
// and time out of a confirmation message. ok is false when any of the
// three is missing, in which case validation is skipped and the
// notification kept.
func extractReservationFacts(msg string) (venue, date, clock string, ok bool) {
	q := quotedRe.FindString(msg)
	if q == "" {
		return "", "", "", false
	}
	venue = trimQuotes(q)
	date = brDateRe.FindString(msg)
	clock = shortTimeRe.FindString(msg)
	if venue == "" || date == "" || clock == "" {
		return "", "", "", false
	}
	return venue, date, clock, true
}

func trimQuotes(s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return ""
	}
	return strings.TrimSpace(string(r[1 : len(r)-1]))
}
