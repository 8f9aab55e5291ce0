package repository

import (
	"context"
	"time"

	"motorent-backend/internal/domain"
)

type AssetRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.RentalAsset, error)
}

type VendorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Vendor, error)
	// GetHours returns the vendor's operating hours for a weekday, or
	// nil when the vendor publishes no entry for that day.
	GetHours(ctx context.Context, vendorID int64, weekday time.Weekday) (*domain.VendorHours, error)
	ListClosures(ctx context.Context, vendorID int64, from, to time.Time) ([]domain.VendorClosure, error)
}

type ReservationRepository interface {
	// Create inserts the reservation and its add-on line items. The
	// insert is the serialization point for double-booking: a datastore
	// uniqueness/exclusion violation on the asset interval is returned
	// as an IntervalConflictError even when the availability check
	// passed moments earlier.
	Create(ctx context.Context, r *domain.Reservation, addOns []domain.ReservationAddOn) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	Update(ctx context.Context, r *domain.Reservation) error
	ListOverlapping(ctx context.Context, assetID int64, start, end time.Time) ([]domain.Reservation, error)
	ListAddOns(ctx context.Context, reservationID int64) ([]domain.ReservationAddOn, error)
	ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error)
	ListByVendor(ctx context.Context, vendorID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error)
	// ListPendingBefore returns pending reservations created before the
	// cutoff, for the stale-booking expiry job.
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error)
	// ListStartingBetween returns confirmed reservations whose start
	// falls in [from, to), for pickup reminders.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	Update(ctx context.Context, p *domain.Payment) error
	ListByReservation(ctx context.Context, reservationID int64) ([]domain.Payment, error)
	// RecordCaptureAndConfirm persists the captured payment and the
	// reservation's advance to confirmed as one transaction. If it
	// fails, the caller is holding funds the datastore knows nothing
	// about and must escalate rather than retry the charge.
	RecordCaptureAndConfirm(ctx context.Context, p *domain.Payment, r *domain.Reservation) error
}

type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	IncrementUsage(ctx context.Context, id int64) error
	CountUsesByRenter(ctx context.Context, couponID, renterID int64) (int32, error)
}

type AddOnRepository interface {
	ListByIDs(ctx context.Context, ids []int64) ([]domain.AddOn, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}
