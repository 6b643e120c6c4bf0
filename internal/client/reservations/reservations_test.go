package reservations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condoway/client-go/internal/client/api"
	"github.com/condoway/client-go/internal/client/models"
	"github.com/condoway/client-go/internal/client/paging"
)

type fakeClient struct {
	reservations []models.Reservation
	err          error
	gotUnitID    int64
}

var _ api.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	return nil, "", errors.New("not implemented")
}

func (f *fakeClient) ListOccurrences(ctx context.Context, unitID int64, page, pageSize int) (paging.Page[models.Occurrence], error) {
	return paging.Page[models.Occurrence]{}, errors.New("not implemented")
}

func (f *fakeClient) CreateOccurrence(ctx context.Context, unitID int64, occ models.Occurrence) (models.Occurrence, error) {
	return models.Occurrence{}, errors.New("not implemented")
}

func (f *fakeClient) ListVisitors(ctx context.Context, unitID int64, page, pageSize int) (paging.Page[models.Visitor], error) {
	return paging.Page[models.Visitor]{}, errors.New("not implemented")
}

func (f *fakeClient) UpdateVisitorStatus(ctx context.Context, visitorID int64, status string) error {
	return errors.New("not implemented")
}

func (f *fakeClient) ListNotifications(ctx context.Context, unitID int64, page, pageSize int) (paging.Page[models.RawNotification], error) {
	return paging.Page[models.RawNotification]{}, errors.New("not implemented")
}

func (f *fakeClient) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	return errors.New("not implemented")
}

func (f *fakeClient) ListReservations(ctx context.Context, unitID int64) ([]models.Reservation, error) {
	f.gotUnitID = unitID
	return f.reservations, f.err
}

func TestReader_ConfirmedFiltersByStatus(t *testing.T) {
	f := &fakeClient{reservations: []models.Reservation{
		{ID: 1, Venue: "Salão de Festas", Status: "confirmada"},
		{ID: 2, Venue: "Churrasqueira", Status: "pendente"},
		{ID: 3, Venue: "Quadra", Status: "Aprovada"},
	}}
	r := NewReader(f, 42, nil)

	got, err := r.Confirmed(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Equal(t, int64(42), f.gotUnitID)
}

func TestReader_ConfirmedPropagatesError(t *testing.T) {
	f := &fakeClient{err: errors.New("boom")}
	r := NewReader(f, 42, nil)

	_, err := r.Confirmed(context.Background())
	require.Error(t, err)
}

func TestMatchesConfirmed(t *testing.T) {
	list := []models.Reservation{
		{Venue: "Salão de Festas", Date: "12/05/2024", Time: "19:00", Status: "confirmada"},
	}

	tests := []struct {
		name  string
		venue string
		date  string
		clock string
		want  bool
	}{
		{"exact", "Salão de Festas", "12/05/2024", "19:00", true},
		{"fragment of venue", "salão", "12/05/2024", "19:00", true},
		{"venue superset", "Salão de Festas do Bloco B", "12/05/2024", "19:00", true},
		{"wrong date", "Salão de Festas", "13/05/2024", "19:00", false},
		{"wrong time", "Salão de Festas", "12/05/2024", "20:00", false},
		{"different venue", "Churrasqueira", "12/05/2024", "19:00", false},
		{"empty fragment", "", "12/05/2024", "19:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesConfirmed(list, tt.venue, tt.date, tt.clock))
		})
	}
}

func TestReader_ConfirmedMatch(t *testing.T) {
	f := &fakeClient{reservations: []models.Reservation{
		{Venue: "Salão de Festas", Date: "12/05/2024", Time: "19:00", Status: "confirmada"},
		{Venue: "Salão de Festas", Date: "12/05/2024", Time: "21:00", Status: "pendente"},
	}}
	r := NewReader(f, 42, nil)

	ok, err := r.ConfirmedMatch(context.Background(), "Salão", "12/05/2024", "19:00")
	require.NoError(t, err)
	assert.True(t, ok)

	// the pending slot does not corroborate
	ok, err = r.ConfirmedMatch(context.Background(), "Salão", "12/05/2024", "21:00")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesConfirmed_EmptyList(t *testing.T) {
	assert.False(t, MatchesConfirmed(nil, "Salão", "12/05/2024", "19:00"))
}
