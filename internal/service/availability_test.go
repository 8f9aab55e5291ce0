package service

import (
	"context"
	"testing"
	"time"

	"motorent-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAvailableInterval(t *testing.T) {
	f := newFixture()
	start, end := rentalWindow(8)

	res, err := f.booking.Quote(context.Background(), QuoteRequest{AssetID: testAssetID, Start: start, End: end})
	require.NoError(t, err)
	assert.Equal(t, int64(6000), res.TotalYen)

	check, err := NewAvailabilityService(f.store.Assets(), f.store.Vendors(), f.store.Reservations()).
		Check(context.Background(), testAssetID, start, end)
	require.NoError(t, err)
	assert.True(t, check.Available)
	assert.Empty(t, check.ConflictIDs)
}

func TestCheckReportsConflictWithNextAvailable(t *testing.T) {
	f := newFixture()
	booked := f.mustBook(8)

	// Request an interval that starts halfway through the booking.
	start := booked.StartAt.Add(4 * time.Hour)
	end := start.Add(8 * time.Hour)

	check, err := f.booking.Quote(context.Background(), QuoteRequest{AssetID: testAssetID, Start: start, End: end})
	assert.Nil(t, check)
	var conflict *domain.IntervalConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int64{booked.ID}, conflict.ReservationIDs)
	assert.Equal(t, booked.EndAt, conflict.NextAvailable)

	avail, err := NewAvailabilityService(f.store.Assets(), f.store.Vendors(), f.store.Reservations()).
		Check(context.Background(), testAssetID, start, end)
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, domain.CodeIntervalConflict, avail.Reason)
	require.NotNil(t, avail.NextAvailable)
	assert.Equal(t, booked.EndAt, *avail.NextAvailable)
}

func TestCheckTouchingIntervalsDoNotConflict(t *testing.T) {
	f := newFixture()
	booked := f.mustBook(8)

	// A rental starting exactly when the previous one ends is allowed.
	rv, err := f.booking.CreateReservation(context.Background(), CreateReservationRequest{
		AssetID:  testAssetID,
		RenterID: testRenterID + 1,
		Start:    booked.EndAt,
		End:      booked.EndAt.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, rv.Status)
}

func TestCheckVendorClosure(t *testing.T) {
	f := newFixture()
	start, end := rentalWindow(8)
	f.store.PutClosure(domain.VendorClosure{VendorID: testVendorID, Date: start, Reason: "national holiday"})

	_, err := f.booking.Quote(context.Background(), QuoteRequest{AssetID: testAssetID, Start: start, End: end})
	assert.Equal(t, domain.CodeVendorClosed, domain.CodeOf(err))
}

func TestCheckOutsideBusinessHours(t *testing.T) {
	f := newFixture()
	start, _ := rentalWindow(8)
	early := time.Date(start.Year(), start.Month(), start.Day(), 6, 30, 0, 0, time.UTC)

	_, err := f.booking.Quote(context.Background(), QuoteRequest{
		AssetID: testAssetID, Start: early, End: early.Add(4 * time.Hour),
	})
	assert.Equal(t, domain.CodeOutsideBusinessHours, domain.CodeOf(err))
}

func TestCheckClosedWeekday(t *testing.T) {
	f := newFixture()
	start, end := rentalWindow(8)
	f.store.PutHours(domain.VendorHours{VendorID: testVendorID, Weekday: start.Weekday(), Closed: true})

	_, err := f.booking.Quote(context.Background(), QuoteRequest{AssetID: testAssetID, Start: start, End: end})
	assert.Equal(t, domain.CodeOutsideBusinessHours, domain.CodeOf(err))
}

func TestCheckUnavailableAndUnknownAsset(t *testing.T) {
	f := newFixture()
	start, end := rentalWindow(8)

	f.store.PutAsset(domain.RentalAsset{ID: 2, VendorID: testVendorID, SizeClass: domain.SizeClassMid, RateDayYen: 5000, Available: false})
	_, err := f.booking.Quote(context.Background(), QuoteRequest{AssetID: 2, Start: start, End: end})
	assert.Equal(t, domain.CodeAssetUnavailable, domain.CodeOf(err))

	// An unknown asset id reads the same as an unavailable one.
	_, err = f.booking.Quote(context.Background(), QuoteRequest{AssetID: 999, Start: start, End: end})
	assert.Equal(t, domain.CodeAssetUnavailable, domain.CodeOf(err))
}

func TestCheckRejectsInvertedInterval(t *testing.T) {
	f := newFixture()
	start, end := rentalWindow(8)

	_, err := f.booking.Quote(context.Background(), QuoteRequest{AssetID: testAssetID, Start: end, End: start})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}
