package service

import (
	"context"
	"testing"
	"time"

	"motorent-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureConfirmsReservation(t *testing.T) {
	f := newFixture()
	rv := f.mustBook(8)

	payment, err := f.payments.Capture(context.Background(), renterActor, rv.ID, "tok_visa")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, domain.PaymentChannelOnline, payment.Channel)
	assert.Equal(t, rv.TotalYen, payment.AmountYen)
	assert.NotEmpty(t, payment.ExternalTxID)

	held, ok := f.sandbox.Captured(payment.ExternalTxID)
	require.True(t, ok)
	assert.Equal(t, rv.TotalYen, held)

	confirmed, _, err := f.booking.GetReservation(context.Background(), renterActor, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusConfirmed, confirmed.Status)

	assert.Len(t, f.dispatcher.byTemplate(domain.EffectReservationConfirmed), 1)
}

func TestCaptureTwiceDoesNotChargeTwice(t *testing.T) {
	f := newFixture()
	rv := f.mustBook(8)

	_, err := f.payments.Capture(context.Background(), renterActor, rv.ID, "tok_visa")
	require.NoError(t, err)
	require.Equal(t, 1, f.gw.captures)

	_, err = f.payments.Capture(context.Background(), renterActor, rv.ID, "tok_visa")
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
	// The second attempt must be rejected before the gateway is touched.
	assert.Equal(t, 1, f.gw.captures)

	payments, err := f.payments.ListPayments(context.Background(), renterActor, rv.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestCaptureRejectedWhenAlreadySettledOffline(t *testing.T) {
	f := newFixture()
	rv := f.mustBook(8)

	// The renter pays the full amount in cash at the counter while the
	// reservation is still pending.
	_, err := f.payments.RecordOfflinePayment(context.Background(), vendorActor, rv.ID, rv.TotalYen, domain.PaymentChannelCash)
	require.NoError(t, err)

	// An online capture on top of that would exceed the total.
	_, err = f.payments.Capture(context.Background(), renterActor, rv.ID, "tok_visa")
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
	assert.Zero(t, f.gw.captures)

	payments, err := f.payments.ListPayments(context.Background(), renterActor, rv.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestCaptureGatewayFailureLeavesPending(t *testing.T) {
	f := newFixture()
	rv := f.mustBook(8)

	f.sandbox.FailCapture = true
	_, err := f.payments.Capture(context.Background(), renterActor, rv.ID, "tok_visa")
	assert.Equal(t, domain.CodePaymentGateway, domain.CodeOf(err))

	// Nothing was written; the whole capture may simply be retried.
	still, _, err := f.booking.GetReservation(context.Background(), renterActor, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, still.Status)

	payments, err := f.payments.ListPayments(context.Background(), renterActor, rv.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	f.sandbox.FailCapture = false
	_, err = f.payments.Capture(context.Background(), renterActor, rv.ID, "tok_visa")
	require.NoError(t, err)
}

func TestCaptureStoreFailureReportsReconciliationGap(t *testing.T) {
	f := newFixture()
	rv := f.mustBook(8)

	broken := NewPaymentService(brokenPaymentRepo{f.store.Payments()}, f.store.Reservations(), f.gw, f.dispatcher)
	_, err := broken.Capture(context.Background(), renterActor, rv.ID, "tok_visa")

	// The charge went through on the gateway side, so the failure must
	// escalate with the reference needed for manual reconciliation.
	var gap *domain.ReconciliationGapError
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, rv.ID, gap.ReservationID)
	assert.Equal(t, rv.TotalYen, gap.AmountYen)
	assert.NotEmpty(t, gap.ExternalTxID)
	held, ok := f.sandbox.Captured(gap.ExternalTxID)
	require.True(t, ok)
	assert.Equal(t, rv.TotalYen, held)

	// No silent retry of the charge.
	assert.Equal(t, 1, f.gw.captures)
}

func TestCaptureForbiddenForOtherRenter(t *testing.T) {
	f := newFixture()
	rv := f.mustBook(8)

	stranger := Actor{UserID: testRenterID + 100, Role: renterActor.Role}
	_, err := f.payments.Capture(context.Background(), stranger, rv.ID, "tok_visa")
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
	assert.Zero(t, f.gw.captures)
}

func TestRecordOfflinePayment(t *testing.T) {
	f := newFixture()
	rv := f.mustBook(8)
	_, err := f.payments.Capture(context.Background(), renterActor, rv.ID, "tok_visa")
	require.NoError(t, err)
	_, err = f.booking.Pickup(context.Background(), vendorActor, rv.ID)
	require.NoError(t, err)
	done, err := f.booking.Checkout(context.Background(), vendorActor, rv.ID, rv.EndAt.Add(time.Hour))
	require.NoError(t, err)
	require.Positive(t, done.OvertimeYen)

	// The overtime balance is settled in cash at the counter.
	payment, err := f.payments.RecordOfflinePayment(context.Background(), vendorActor, rv.ID, done.OvertimeYen, domain.PaymentChannelCash)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
	assert.Empty(t, payment.ExternalTxID)

	// The reservation is now fully settled; another yen would overpay.
	_, err = f.payments.RecordOfflinePayment(context.Background(), vendorActor, rv.ID, 1, domain.PaymentChannelCash)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}

func TestRecordOfflinePaymentValidation(t *testing.T) {
	f := newFixture()
	rv := f.mustBook(8)

	_, err := f.payments.RecordOfflinePayment(context.Background(), vendorActor, rv.ID, 1000, domain.PaymentChannelOnline)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = f.payments.RecordOfflinePayment(context.Background(), vendorActor, rv.ID, 0, domain.PaymentChannelCash)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = f.payments.RecordOfflinePayment(context.Background(), renterActor, rv.ID, 1000, domain.PaymentChannelCash)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
}

func TestListPaymentsForbiddenForStranger(t *testing.T) {
	f := newFixture()
	rv := f.mustBook(8)

	stranger := Actor{UserID: testRenterID + 100, Role: renterActor.Role}
	_, err := f.payments.ListPayments(context.Background(), stranger, rv.ID)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
}
