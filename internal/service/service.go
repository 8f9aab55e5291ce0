package service

import (
	"context"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/pricing"
	"motorent-backend/internal/security"
)

// Actor is the authenticated identity performing an operation. How it
// was established (token, session) is the boundary's concern; the core
// only uses it for authorization gating around operations.
type Actor struct {
	UserID   int64
	Role     security.Role
	VendorID int64
}

func (a Actor) IsAdmin() bool { return a.Role == security.RoleAdmin }

// CanManage reports whether the actor may act on a reservation as its
// vendor (or as an admin).
func (a Actor) CanManage(rv *domain.Reservation) bool {
	return a.IsAdmin() || (a.Role == security.RoleVendor && a.VendorID == rv.VendorID)
}

// CanView reports whether the actor may read a reservation.
func (a Actor) CanView(rv *domain.Reservation) bool {
	return a.IsAdmin() || a.UserID == rv.RenterID || (a.Role == security.RoleVendor && a.VendorID == rv.VendorID)
}

type AvailabilityResult struct {
	Available bool `json:"available"`
	// Reason carries the rejection code when Available is false.
	Reason        domain.ErrorCode `json:"reason,omitempty"`
	Message       string           `json:"message,omitempty"`
	ConflictIDs   []int64          `json:"conflict_ids,omitempty"`
	NextAvailable *time.Time       `json:"next_available,omitempty"`
}

type AvailabilityService interface {
	// Check runs the ordered availability checks for a candidate
	// interval. Read-only and advisory; the reservation insert remains
	// the true serialization point.
	Check(ctx context.Context, assetID int64, start, end time.Time) (*AvailabilityResult, error)
	// Verify runs the same checks but returns the rejection as a domain
	// error, plus the asset for downstream pricing. Used inside the
	// booking flow.
	Verify(ctx context.Context, assetID int64, start, end time.Time) (*domain.RentalAsset, error)
}

type QuoteRequest struct {
	AssetID      int64                    `json:"asset_id"`
	RenterID     int64                    `json:"-"`
	Start        time.Time                `json:"start"`
	End          time.Time                `json:"end"`
	AddOns       []pricing.AddOnSelection `json:"addons,omitempty"`
	WithCoverage bool                     `json:"with_coverage"`
	CouponCode   string                   `json:"coupon_code,omitempty"`
}

type QuoteResult struct {
	Breakdown   pricing.Breakdown `json:"breakdown"`
	DiscountYen int64             `json:"discount_yen"`
	TotalYen    int64             `json:"total_yen"`
}

type CreateReservationRequest struct {
	AssetID      int64                    `json:"asset_id"`
	RenterID     int64                    `json:"-"`
	Start        time.Time                `json:"start"`
	End          time.Time                `json:"end"`
	AddOns       []pricing.AddOnSelection `json:"addons,omitempty"`
	WithCoverage bool                     `json:"with_coverage"`
	CouponCode   string                   `json:"coupon_code,omitempty"`
	Notes        string                   `json:"notes,omitempty"`
}

type CancelResult struct {
	Reservation *domain.Reservation `json:"reservation"`
	// RefundedYen is the amount the gateway accepted for refund.
	RefundedYen int64 `json:"refunded_yen"`
	// RefundFailed is set when the refund call failed after the
	// cancellation already went through; support follow-up is needed.
	RefundFailed bool `json:"refund_failed"`
}

type BookingService interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error)
	CreateReservation(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, actor Actor, reservationID int64, reason string) (*CancelResult, error)
	// Pickup moves a confirmed reservation to in_use when the renter
	// collects the asset.
	Pickup(ctx context.Context, actor Actor, reservationID int64) (*domain.Reservation, error)
	// Checkout completes the rental, appending an overtime charge when
	// the actual return is late. No payment is auto-captured; the new
	// charge is recorded for later settlement.
	Checkout(ctx context.Context, actor Actor, reservationID int64, actualEnd time.Time) (*domain.Reservation, error)
	MarkNoShow(ctx context.Context, actor Actor, reservationID int64) (*domain.Reservation, error)
	GetReservation(ctx context.Context, actor Actor, reservationID int64) (*domain.Reservation, []domain.ReservationAddOn, error)
	ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error)
	ListByVendor(ctx context.Context, vendorID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error)
}

// RefundOutcome reports what happened to the money side of a
// cancellation, independently of the booking-state side.
type RefundOutcome struct {
	AttemptedYen int64
	RefundedYen  int64
	Failed       bool
}

type PaymentService interface {
	// Capture charges the renter's payment source for the reservation
	// total and advances the reservation to confirmed. Safe against
	// double invocation: a reservation that already left pending fails
	// with Conflict before any gateway call.
	Capture(ctx context.Context, actor Actor, reservationID int64, source string) (*domain.Payment, error)
	// RecordOfflinePayment records an in-person cash or card settlement
	// against a reservation. No gateway involvement.
	RecordOfflinePayment(ctx context.Context, actor Actor, reservationID int64, amountYen int64, channel domain.PaymentChannel) (*domain.Payment, error)
	// RefundForCancellation refunds the refundable portion of the
	// reservation's completed online payments. A gateway failure is
	// reported in the outcome, never as an error that would undo the
	// cancellation.
	RefundForCancellation(ctx context.Context, rv *domain.Reservation, reason string) (*RefundOutcome, error)
	ListPayments(ctx context.Context, actor Actor, reservationID int64) ([]domain.Payment, error)
}

// Dispatcher executes queued effects outside the transactional path.
// Fire-and-forget: failures are logged, never returned to the request.
type Dispatcher interface {
	Dispatch(effects []domain.Effect)
}

// EmailSender delivers one rendered message.
type EmailSender interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}
