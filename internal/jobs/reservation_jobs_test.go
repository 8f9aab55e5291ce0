package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"motorent-backend/internal/config"
	"motorent-backend/internal/domain"
	"motorent-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDispatcher struct {
	mu      sync.Mutex
	effects []domain.Effect
}

func (d *captureDispatcher) Dispatch(effects []domain.Effect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.effects = append(d.effects, effects...)
}

func (d *captureDispatcher) templates() []domain.EffectTemplate {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.EffectTemplate, 0, len(d.effects))
	for _, e := range d.effects {
		out = append(out, e.Template)
	}
	return out
}

func newRunner(store *memory.Store, dispatcher *captureDispatcher, pendingTTLMinutes int) *JobRunner {
	cfg := &config.Config{}
	cfg.Booking.PendingTTLMinutes = pendingTTLMinutes
	return NewJobRunner(store.Reservations(), store.Vendors(), dispatcher, cfg)
}

func seedReservation(t *testing.T, store *memory.Store, status domain.ReservationStatus, start time.Time) *domain.Reservation {
	t.Helper()
	rv := &domain.Reservation{
		RenterID: 42,
		VendorID: 1,
		AssetID:  1,
		StartAt:  start,
		EndAt:    start.Add(8 * time.Hour),
		Status:   domain.ReservationStatusPending,
		TotalYen: 6800,
	}
	require.NoError(t, store.Reservations().Create(context.Background(), rv, nil))
	if status != domain.ReservationStatusPending {
		rv.Status = status
		require.NoError(t, store.Reservations().Update(context.Background(), rv))
	}
	return rv
}

func TestExpireStalePendingReservations(t *testing.T) {
	store := memory.NewStore()
	store.PutVendor(domain.Vendor{ID: 1, Name: "Ueno Riders"})
	dispatcher := &captureDispatcher{}

	start := time.Now().UTC().Add(48 * time.Hour)
	stale := seedReservation(t, store, domain.ReservationStatusPending, start)
	paid := seedReservation(t, store, domain.ReservationStatusConfirmed, start.Add(12*time.Hour))

	// A zero TTL makes every pending reservation stale immediately.
	runner := newRunner(store, dispatcher, 0)
	runner.ExpireStalePendingReservations()

	got, err := store.Reservations().GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)

	untouched, err := store.Reservations().GetByID(context.Background(), paid.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusConfirmed, untouched.Status)

	assert.Contains(t, dispatcher.templates(), domain.EffectReservationCancelled)
}

func TestSendPickupReminders(t *testing.T) {
	store := memory.NewStore()
	store.PutVendor(domain.Vendor{ID: 1, Name: "Ueno Riders"})
	dispatcher := &captureDispatcher{}

	soon := seedReservation(t, store, domain.ReservationStatusConfirmed, time.Now().UTC().Add(2*time.Hour))
	// Outside the reminder window.
	seedReservation(t, store, domain.ReservationStatusConfirmed, time.Now().UTC().Add(72*time.Hour))
	// Pending reservations get no reminder.
	seedReservation(t, store, domain.ReservationStatusPending, time.Now().UTC().Add(12*time.Hour))

	runner := newRunner(store, dispatcher, 30)
	runner.SendPickupReminders()

	require.Len(t, dispatcher.effects, 1)
	assert.Equal(t, domain.EffectPickupReminder, dispatcher.effects[0].Template)
	assert.Equal(t, soon.RenterID, dispatcher.effects[0].UserID)
	assert.Contains(t, dispatcher.effects[0].Message, "Ueno Riders")
}
