package memory

import (
	"context"
	"testing"
	"time"

	"motorent-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReservation(assetID int64, start, end time.Time) *domain.Reservation {
	return &domain.Reservation{
		RenterID: 42,
		VendorID: 1,
		AssetID:  assetID,
		StartAt:  start,
		EndAt:    end,
		Status:   domain.ReservationStatusPending,
	}
}

func TestListClosuresMatchesByCalendarDay(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	// Closures are calendar days; a stored time-of-day must not hide
	// the closure from a same-day window.
	s.PutClosure(domain.VendorClosure{VendorID: 1, Date: time.Date(2027, 4, 5, 9, 0, 0, 0, time.UTC), Reason: "national holiday"})

	closures, err := s.ListClosures(ctx, 1, time.Date(2027, 4, 5, 10, 0, 0, 0, time.UTC), time.Date(2027, 4, 5, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, closures, 1)
	assert.Equal(t, "national holiday", closures[0].Reason)

	// A window the day after stays clear.
	closures, err = s.ListClosures(ctx, 1, time.Date(2027, 4, 6, 10, 0, 0, 0, time.UTC), time.Date(2027, 4, 6, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, closures)
}

func TestCreateRejectsOverlap(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2027, 4, 5, 9, 0, 0, 0, time.UTC)

	first := newReservation(1, start, start.Add(8*time.Hour))
	require.NoError(t, s.Create(ctx, first, nil))

	second := newReservation(1, start.Add(4*time.Hour), start.Add(12*time.Hour))
	err := s.Create(ctx, second, nil)
	var conflict *domain.IntervalConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int64{first.ID}, conflict.ReservationIDs)
	assert.Equal(t, first.EndAt, conflict.NextAvailable)
	assert.Zero(t, second.ID)
}

func TestCreateAllowsTouchingAndOtherAssets(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2027, 4, 5, 9, 0, 0, 0, time.UTC)

	first := newReservation(1, start, start.Add(8*time.Hour))
	require.NoError(t, s.Create(ctx, first, nil))

	// Half-open intervals: a rental starting at the previous end is fine.
	touching := newReservation(1, first.EndAt, first.EndAt.Add(2*time.Hour))
	assert.NoError(t, s.Create(ctx, touching, nil))

	// Another asset is never in conflict.
	other := newReservation(2, start, start.Add(8*time.Hour))
	assert.NoError(t, s.Create(ctx, other, nil))
}

func TestCreateIgnoresInactiveReservations(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2027, 4, 5, 9, 0, 0, 0, time.UTC)

	first := newReservation(1, start, start.Add(8*time.Hour))
	require.NoError(t, s.Create(ctx, first, nil))
	first.Status = domain.ReservationStatusCancelled
	require.NoError(t, s.Update(ctx, first))

	replacement := newReservation(1, start, start.Add(8*time.Hour))
	assert.NoError(t, s.Create(ctx, replacement, nil))
}

func TestRecordCaptureAndConfirmRequiresPending(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2027, 4, 5, 9, 0, 0, 0, time.UTC)

	rv := newReservation(1, start, start.Add(8*time.Hour))
	require.NoError(t, s.Create(ctx, rv, nil))

	rv.Status = domain.ReservationStatusConfirmed
	payment := &domain.Payment{ReservationID: rv.ID, Channel: domain.PaymentChannelOnline, AmountYen: 6800, Status: domain.PaymentStatusCompleted}
	require.NoError(t, s.RecordCaptureAndConfirm(ctx, payment, rv))
	assert.NotZero(t, payment.ID)

	// A second confirm attempt finds the reservation no longer pending.
	again := &domain.Payment{ReservationID: rv.ID, Channel: domain.PaymentChannelOnline, AmountYen: 6800, Status: domain.PaymentStatusCompleted}
	err := s.RecordCaptureAndConfirm(ctx, again, rv)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}
