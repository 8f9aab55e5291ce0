package service

import (
	"context"
	"fmt"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/gateway"
	"motorent-backend/internal/logger"
	"motorent-backend/internal/metrics"
	"motorent-backend/internal/repository"

	"github.com/google/uuid"
)

const currencyJPY = "JPY"

type paymentService struct {
	paymentRepo     repository.PaymentRepository
	reservationRepo repository.ReservationRepository
	gw              gateway.Gateway
	dispatcher      Dispatcher
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	reservationRepo repository.ReservationRepository,
	gw gateway.Gateway,
	dispatcher Dispatcher,
) PaymentService {
	return &paymentService{
		paymentRepo:     paymentRepo,
		reservationRepo: reservationRepo,
		gw:              gw,
		dispatcher:      dispatcher,
	}
}

func (s *paymentService) Capture(ctx context.Context, actor Actor, reservationID int64, source string) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.Capture", "reservation_id", reservationID)

	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.UserID != rv.RenterID {
		return nil, domain.E(domain.CodeForbidden, "not allowed to pay for reservation %d", reservationID)
	}

	// Fail fast before touching the gateway: re-invoking capture on a
	// reservation that already left pending must not charge again.
	if rv.Status != domain.ReservationStatusPending {
		return nil, domain.E(domain.CodeConflict, "reservation %d is %s, not pending", rv.ID, rv.Status)
	}
	if rv.TotalYen <= 0 {
		return nil, domain.E(domain.CodeValidation, "reservation %d has nothing to capture", rv.ID)
	}
	settled, err := s.settledYen(ctx, rv.ID)
	if err != nil {
		return nil, err
	}
	if settled >= rv.TotalYen {
		return nil, domain.E(domain.CodeConflict, "reservation %d is already settled for %d yen", rv.ID, settled)
	}

	captured, err := s.gw.Capture(ctx, gateway.CaptureRequest{
		AmountYen:      rv.TotalYen,
		Currency:       currencyJPY,
		Source:         source,
		Note:           fmt.Sprintf("reservation %d", rv.ID),
		IdempotencyKey: fmt.Sprintf("capture-%d-%s", rv.ID, uuid.NewString()),
	})
	if err != nil {
		// No state was mutated; the reservation stays pending and the
		// caller may retry the whole capture.
		metrics.IncGatewayCall("capture", "failure")
		logger.ExitMethodWithError("paymentService.Capture", err, "reservation_id", rv.ID)
		return nil, err
	}
	metrics.IncGatewayCall("capture", "success")

	payment := &domain.Payment{
		ReservationID: rv.ID,
		VendorID:      rv.VendorID,
		Channel:       domain.PaymentChannelOnline,
		ExternalTxID:  captured.ExternalID,
		AmountYen:     rv.TotalYen,
		Currency:      currencyJPY,
		Status:        domain.PaymentStatusCompleted,
	}
	rv.Status = domain.ReservationStatusConfirmed

	if err := s.paymentRepo.RecordCaptureAndConfirm(ctx, payment, rv); err != nil {
		// The gateway holds funds the datastore knows nothing about.
		// Retrying the charge here would double-charge; escalate with
		// everything manual reconciliation needs instead.
		metrics.IncReconciliationGap()
		gap := &domain.ReconciliationGapError{
			ReservationID: rv.ID,
			ExternalTxID:  captured.ExternalID,
			AmountYen:     payment.AmountYen,
			Err:           err,
		}
		logger.Error("Payment captured but not recorded; manual reconciliation required",
			"reservation_id", rv.ID, "external_tx_id", captured.ExternalID, "amount_yen", payment.AmountYen, "error", err)
		return nil, gap
	}

	s.dispatcher.Dispatch([]domain.Effect{{
		UserID:   rv.RenterID,
		Template: domain.EffectReservationConfirmed,
		Title:    "Reservation confirmed",
		Message:  fmt.Sprintf("Payment of %d yen received. Reservation %d is confirmed.", payment.AmountYen, rv.ID),
		Data:     map[string]string{"reservation_id": fmt.Sprintf("%d", rv.ID)},
	}})

	logger.ExitMethod("paymentService.Capture", "reservation_id", rv.ID, "payment_id", payment.ID)
	return payment, nil
}

func (s *paymentService) RecordOfflinePayment(ctx context.Context, actor Actor, reservationID int64, amountYen int64, channel domain.PaymentChannel) (*domain.Payment, error) {
	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(rv) {
		return nil, domain.E(domain.CodeForbidden, "not allowed to record payments for reservation %d", reservationID)
	}
	if channel != domain.PaymentChannelCash && channel != domain.PaymentChannelCard {
		return nil, domain.E(domain.CodeValidation, "offline payment channel must be cash or card")
	}
	if amountYen <= 0 {
		return nil, domain.E(domain.CodeValidation, "payment amount must be positive")
	}
	if rv.Status.IsTerminal() && rv.Status != domain.ReservationStatusCompleted {
		return nil, domain.E(domain.CodeConflict, "cannot record payment against a %s reservation", rv.Status)
	}

	// The sum of live payments must never exceed the reservation total.
	settled, err := s.settledYen(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if settled+amountYen > rv.TotalYen {
		return nil, domain.E(domain.CodeConflict, "payment of %d yen would exceed the outstanding balance of %d yen", amountYen, rv.TotalYen-settled)
	}

	payment := &domain.Payment{
		ReservationID: rv.ID,
		VendorID:      rv.VendorID,
		Channel:       channel,
		AmountYen:     amountYen,
		Currency:      currencyJPY,
		Status:        domain.PaymentStatusCompleted,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// settledYen sums the non-refunded portion of all completed payments
// on a reservation.
func (s *paymentService) settledYen(ctx context.Context, reservationID int64) (int64, error) {
	existing, err := s.paymentRepo.ListByReservation(ctx, reservationID)
	if err != nil {
		return 0, err
	}
	var settled int64
	for _, p := range existing {
		if p.Status == domain.PaymentStatusCompleted || p.Status == domain.PaymentStatusPartiallyRefunded {
			settled += p.AmountYen - p.RefundedYen
		}
	}
	return settled, nil
}

func (s *paymentService) RefundForCancellation(ctx context.Context, rv *domain.Reservation, reason string) (*RefundOutcome, error) {
	payments, err := s.paymentRepo.ListByReservation(ctx, rv.ID)
	if err != nil {
		return nil, err
	}

	outcome := &RefundOutcome{}
	for i := range payments {
		p := &payments[i]
		refundable := p.Refundable()
		if refundable <= 0 {
			continue
		}
		outcome.AttemptedYen += refundable

		refunded, err := s.gw.Refund(ctx, p.ExternalTxID, refundable, reason)
		if err != nil {
			// The cancellation stands; the refund becomes a support
			// follow-up, reported on the response.
			metrics.IncGatewayCall("refund", "failure")
			logger.Error("Refund failed after cancellation; support follow-up required",
				"reservation_id", rv.ID, "payment_id", p.ID, "external_tx_id", p.ExternalTxID,
				"amount_yen", refundable, "error", err)
			outcome.Failed = true
			continue
		}
		metrics.IncGatewayCall("refund", "success")

		p.RefundedYen += refundable
		p.RefundID = refunded.RefundID
		if p.RefundedYen >= p.AmountYen {
			p.Status = domain.PaymentStatusRefunded
		} else {
			p.Status = domain.PaymentStatusPartiallyRefunded
		}
		if err := s.paymentRepo.Update(ctx, p); err != nil {
			logger.Error("Refund succeeded but payment row not updated",
				"reservation_id", rv.ID, "payment_id", p.ID, "refund_id", refunded.RefundID, "error", err)
			outcome.Failed = true
			continue
		}
		outcome.RefundedYen += refundable
	}
	return outcome, nil
}

func (s *paymentService) ListPayments(ctx context.Context, actor Actor, reservationID int64) ([]domain.Payment, error) {
	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !actor.CanView(rv) {
		return nil, domain.E(domain.CodeForbidden, "not allowed to view payments for reservation %d", reservationID)
	}
	return s.paymentRepo.ListByReservation(ctx, reservationID)
}
