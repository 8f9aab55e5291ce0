package service

import (
	"context"
	"fmt"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/logger"
	"motorent-backend/internal/metrics"
	"motorent-backend/internal/pricing"
	"motorent-backend/internal/repository"
)

type bookingService struct {
	availability    AvailabilityService
	reservationRepo repository.ReservationRepository
	addOnRepo       repository.AddOnRepository
	couponRepo      repository.CouponRepository
	vendorRepo      repository.VendorRepository
	assetRepo       repository.AssetRepository
	paymentSvc      PaymentService
	dispatcher      Dispatcher

	defaultOvertimeHourlyYen int64
}

func NewBookingService(
	availability AvailabilityService,
	reservationRepo repository.ReservationRepository,
	addOnRepo repository.AddOnRepository,
	couponRepo repository.CouponRepository,
	vendorRepo repository.VendorRepository,
	assetRepo repository.AssetRepository,
	paymentSvc PaymentService,
	dispatcher Dispatcher,
	defaultOvertimeHourlyYen int64,
) BookingService {
	return &bookingService{
		availability:             availability,
		reservationRepo:          reservationRepo,
		addOnRepo:                addOnRepo,
		couponRepo:               couponRepo,
		vendorRepo:               vendorRepo,
		assetRepo:                assetRepo,
		paymentSvc:               paymentSvc,
		dispatcher:               dispatcher,
		defaultOvertimeHourlyYen: defaultOvertimeHourlyYen,
	}
}

// priceRequest runs availability, pricing and the coupon evaluation for
// a candidate booking without writing anything.
func (s *bookingService) priceRequest(ctx context.Context, assetID, renterID int64, start, end time.Time, selections []pricing.AddOnSelection, withCoverage bool, couponCode string) (*domain.RentalAsset, *pricing.Breakdown, *domain.Coupon, int64, error) {
	asset, err := s.availability.Verify(ctx, assetID, start, end)
	if err != nil {
		return nil, nil, nil, 0, err
	}

	var catalog []domain.AddOn
	if len(selections) > 0 {
		ids := make([]int64, 0, len(selections))
		for _, sel := range selections {
			ids = append(ids, sel.AddOnID)
		}
		catalog, err = s.addOnRepo.ListByIDs(ctx, ids)
		if err != nil {
			return nil, nil, nil, 0, err
		}
	}

	breakdown, err := pricing.Quote(asset, start, end, catalog, selections, withCoverage)
	if err != nil {
		return nil, nil, nil, 0, err
	}

	var coupon *domain.Coupon
	var discount int64
	if couponCode != "" {
		coupon, err = s.couponRepo.GetByCode(ctx, couponCode)
		if err != nil {
			return nil, nil, nil, 0, err
		}
		renterUses, err := s.couponRepo.CountUsesByRenter(ctx, coupon.ID, renterID)
		if err != nil {
			return nil, nil, nil, 0, err
		}
		discount, err = pricing.EvaluateCoupon(coupon, breakdown.BaseYen, time.Now(), renterUses)
		if err != nil {
			return nil, nil, nil, 0, err
		}
	}

	return asset, breakdown, coupon, discount, nil
}

func (s *bookingService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	_, breakdown, _, discount, err := s.priceRequest(ctx, req.AssetID, req.RenterID, req.Start, req.End, req.AddOns, req.WithCoverage, req.CouponCode)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{
		Breakdown:   *breakdown,
		DiscountYen: discount,
		TotalYen:    breakdown.Total() - discount,
	}, nil
}

func (s *bookingService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	logger.EnterMethod("bookingService.CreateReservation", "asset_id", req.AssetID, "renter_id", req.RenterID)

	asset, breakdown, coupon, discount, err := s.priceRequest(ctx, req.AssetID, req.RenterID, req.Start, req.End, req.AddOns, req.WithCoverage, req.CouponCode)
	if err != nil {
		metrics.IncBooking("rejected")
		logger.ExitMethodWithError("bookingService.CreateReservation", err, "asset_id", req.AssetID)
		return nil, err
	}

	rv := &domain.Reservation{
		RenterID:    req.RenterID,
		VendorID:    asset.VendorID,
		AssetID:     asset.ID,
		StartAt:     req.Start,
		EndAt:       req.End,
		Tier:        breakdown.Tier,
		Status:      domain.ReservationStatusPending,
		BaseYen:     breakdown.BaseYen,
		AddOnYen:    breakdown.AddOnYen,
		CoverageYen: breakdown.CoverageYen,
		DiscountYen: discount,
		TotalYen:    breakdown.Total() - discount,
		Notes:       req.Notes,
	}
	if coupon != nil {
		rv.CouponID = &coupon.ID
		rv.CouponCode = coupon.Code
	}

	lines := make([]domain.ReservationAddOn, 0, len(breakdown.Lines))
	for _, l := range breakdown.Lines {
		lines = append(lines, domain.ReservationAddOn{
			AddOnID:      l.AddOnID,
			Name:         l.Name,
			Quantity:     l.Quantity,
			UnitPriceYen: l.UnitPriceYen,
			SubtotalYen:  l.SubtotalYen,
		})
	}

	// The insert is the serialization point: a concurrent booking that
	// slipped past the availability check surfaces here as the same
	// IntervalConflict the checker would have produced.
	if err := s.reservationRepo.Create(ctx, rv, lines); err != nil {
		metrics.IncBooking("conflict")
		logger.ExitMethodWithError("bookingService.CreateReservation", err, "asset_id", req.AssetID)
		return nil, err
	}

	if coupon != nil {
		// The usage counter is advisory; a failed bump must not undo a
		// booked reservation.
		if err := s.couponRepo.IncrementUsage(ctx, coupon.ID); err != nil {
			logger.Warn("Failed to increment coupon usage", "coupon_id", coupon.ID, "error", err)
		}
	}

	metrics.IncBooking("created")
	s.dispatcher.Dispatch(s.vendorEffects(ctx, rv, domain.EffectReservationRequested,
		"New reservation request",
		fmt.Sprintf("Reservation %d requested for asset %d, %s to %s",
			rv.ID, rv.AssetID, rv.StartAt.Format(time.RFC3339), rv.EndAt.Format(time.RFC3339))))

	logger.ExitMethod("bookingService.CreateReservation", "reservation_id", rv.ID, "total_yen", rv.TotalYen)
	return rv, nil
}

func (s *bookingService) CancelReservation(ctx context.Context, actor Actor, reservationID int64, reason string) (*CancelResult, error) {
	logger.EnterMethod("bookingService.CancelReservation", "reservation_id", reservationID)

	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	// Only the reservation's own renter, its vendor, or an admin may
	// cancel it.
	if !actor.CanView(rv) {
		return nil, domain.E(domain.CodeForbidden, "not allowed to cancel reservation %d", reservationID)
	}
	if !domain.CanTransition(rv.Status, domain.ReservationStatusCancelled) {
		return nil, domain.E(domain.CodeInvalidStateTransition, "cannot cancel a %s reservation", rv.Status)
	}

	now := time.Now()
	rv.Status = domain.ReservationStatusCancelled
	rv.CancelReason = reason
	rv.CancelledAt = &now
	if err := s.reservationRepo.Update(ctx, rv); err != nil {
		return nil, err
	}

	result := &CancelResult{Reservation: rv}

	// Money reconciliation is independent of booking-state
	// reconciliation: a failed refund never rolls the cancellation
	// back, it flags support follow-up instead.
	outcome, err := s.paymentSvc.RefundForCancellation(ctx, rv, reason)
	if err != nil {
		logger.Error("Refund lookup failed after cancellation; support follow-up required",
			"reservation_id", rv.ID, "error", err)
		result.RefundFailed = true
	} else {
		result.RefundedYen = outcome.RefundedYen
		result.RefundFailed = outcome.Failed
	}

	effects := s.vendorEffects(ctx, rv, domain.EffectReservationCancelled,
		"Reservation cancelled",
		fmt.Sprintf("Reservation %d was cancelled: %s", rv.ID, reason))
	if result.RefundFailed {
		effects = append(effects, domain.Effect{
			UserID:   rv.RenterID,
			Template: domain.EffectRefundFailed,
			Title:    "Refund needs attention",
			Message:  fmt.Sprintf("The refund for reservation %d could not be processed. Support will follow up.", rv.ID),
			Data:     map[string]string{"reservation_id": fmt.Sprintf("%d", rv.ID)},
		})
	}
	s.dispatcher.Dispatch(effects)

	logger.ExitMethod("bookingService.CancelReservation", "reservation_id", rv.ID,
		"refunded_yen", result.RefundedYen, "refund_failed", result.RefundFailed)
	return result, nil
}

func (s *bookingService) Pickup(ctx context.Context, actor Actor, reservationID int64) (*domain.Reservation, error) {
	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(rv) {
		return nil, domain.E(domain.CodeForbidden, "not allowed to manage reservation %d", reservationID)
	}
	if !domain.CanTransition(rv.Status, domain.ReservationStatusInUse) {
		return nil, domain.E(domain.CodeInvalidStateTransition, "cannot start use of a %s reservation", rv.Status)
	}

	rv.Status = domain.ReservationStatusInUse
	if err := s.reservationRepo.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *bookingService) Checkout(ctx context.Context, actor Actor, reservationID int64, actualEnd time.Time) (*domain.Reservation, error) {
	logger.EnterMethod("bookingService.Checkout", "reservation_id", reservationID)

	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(rv) {
		return nil, domain.E(domain.CodeForbidden, "not allowed to manage reservation %d", reservationID)
	}
	if !domain.CanTransition(rv.Status, domain.ReservationStatusCompleted) {
		return nil, domain.E(domain.CodeInvalidStateTransition, "cannot check out a %s reservation", rv.Status)
	}
	if actualEnd.IsZero() {
		actualEnd = time.Now()
	}

	if hours := rv.OvertimeHours(actualEnd); hours > 0 {
		asset, err := s.assetRepo.GetByID(ctx, rv.AssetID)
		if err != nil {
			return nil, err
		}
		rate := s.defaultOvertimeHourlyYen
		if asset.OvertimeHourlyYen > 0 {
			rate = asset.OvertimeHourlyYen
		}
		// Recorded distinctly from the original quote so the overtime
		// charge stays auditable on its own.
		rv.OvertimeYen = hours * rate
		rv.TotalYen += rv.OvertimeYen
	}

	rv.Status = domain.ReservationStatusCompleted
	rv.CheckedOutAt = &actualEnd
	if err := s.reservationRepo.Update(ctx, rv); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch([]domain.Effect{{
		UserID:   rv.RenterID,
		Template: domain.EffectCheckoutReceipt,
		Title:    "Rental completed",
		Message:  fmt.Sprintf("Reservation %d is complete. Total: %d yen (overtime: %d yen).", rv.ID, rv.TotalYen, rv.OvertimeYen),
		Data:     map[string]string{"reservation_id": fmt.Sprintf("%d", rv.ID)},
	}})

	logger.ExitMethod("bookingService.Checkout", "reservation_id", rv.ID, "overtime_yen", rv.OvertimeYen)
	return rv, nil
}

func (s *bookingService) MarkNoShow(ctx context.Context, actor Actor, reservationID int64) (*domain.Reservation, error) {
	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(rv) {
		return nil, domain.E(domain.CodeForbidden, "not allowed to manage reservation %d", reservationID)
	}
	if !domain.CanTransition(rv.Status, domain.ReservationStatusNoShow) {
		return nil, domain.E(domain.CodeInvalidStateTransition, "cannot mark a %s reservation as no-show", rv.Status)
	}

	rv.Status = domain.ReservationStatusNoShow
	if err := s.reservationRepo.Update(ctx, rv); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch([]domain.Effect{{
		UserID:   rv.RenterID,
		Template: domain.EffectNoShowRecorded,
		Title:    "Reservation marked as no-show",
		Message:  fmt.Sprintf("Reservation %d was closed because the renter did not arrive.", rv.ID),
		Data:     map[string]string{"reservation_id": fmt.Sprintf("%d", rv.ID)},
	}})
	return rv, nil
}

func (s *bookingService) GetReservation(ctx context.Context, actor Actor, reservationID int64) (*domain.Reservation, []domain.ReservationAddOn, error) {
	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanView(rv) {
		return nil, nil, domain.E(domain.CodeForbidden, "not allowed to view reservation %d", reservationID)
	}
	lines, err := s.reservationRepo.ListAddOns(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	return rv, lines, nil
}

func (s *bookingService) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return s.reservationRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (s *bookingService) ListByVendor(ctx context.Context, vendorID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return s.reservationRepo.ListByVendor(ctx, vendorID, status, page, pageSize)
}

// vendorEffects builds the vendor-facing notification for a reservation
// event, resolving the vendor's email when it can.
func (s *bookingService) vendorEffects(ctx context.Context, rv *domain.Reservation, template domain.EffectTemplate, title, message string) []domain.Effect {
	effect := domain.Effect{
		Template: template,
		Title:    title,
		Message:  message,
		Data:     map[string]string{"reservation_id": fmt.Sprintf("%d", rv.ID)},
	}
	if vendor, err := s.vendorRepo.GetByID(ctx, rv.VendorID); err == nil {
		effect.UserID = vendor.ID
		effect.Email = vendor.Email
	} else {
		effect.UserID = rv.VendorID
	}
	return []domain.Effect{effect}
}
