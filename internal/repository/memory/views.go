package memory

import (
	"context"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/repository"
)

// The repository interfaces share method names (GetByID, Create, ...)
// with different signatures, so one Store cannot satisfy them all
// directly. These views adapt the store to each interface.

func (s *Store) Assets() repository.AssetRepository               { return s }
func (s *Store) Coupons() repository.CouponRepository             { return s }
func (s *Store) AddOns() repository.AddOnRepository               { return s }
func (s *Store) Vendors() repository.VendorRepository             { return vendorView{s} }
func (s *Store) Reservations() repository.ReservationRepository   { return reservationView{s} }
func (s *Store) Payments() repository.PaymentRepository           { return paymentView{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationView{s} }

type vendorView struct{ s *Store }

func (v vendorView) GetByID(ctx context.Context, id int64) (*domain.Vendor, error) {
	return v.s.GetVendorByID(ctx, id)
}

func (v vendorView) GetHours(ctx context.Context, vendorID int64, weekday time.Weekday) (*domain.VendorHours, error) {
	return v.s.GetHours(ctx, vendorID, weekday)
}

func (v vendorView) ListClosures(ctx context.Context, vendorID int64, from, to time.Time) ([]domain.VendorClosure, error) {
	return v.s.ListClosures(ctx, vendorID, from, to)
}

type reservationView struct{ s *Store }

func (v reservationView) Create(ctx context.Context, r *domain.Reservation, addOns []domain.ReservationAddOn) error {
	return v.s.Create(ctx, r, addOns)
}

func (v reservationView) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return v.s.GetReservationByID(ctx, id)
}

func (v reservationView) Update(ctx context.Context, r *domain.Reservation) error {
	return v.s.Update(ctx, r)
}

func (v reservationView) ListOverlapping(ctx context.Context, assetID int64, start, end time.Time) ([]domain.Reservation, error) {
	return v.s.ListOverlapping(ctx, assetID, start, end)
}

func (v reservationView) ListAddOns(ctx context.Context, reservationID int64) ([]domain.ReservationAddOn, error) {
	return v.s.ListAddOns(ctx, reservationID)
}

func (v reservationView) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return v.s.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (v reservationView) ListByVendor(ctx context.Context, vendorID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return v.s.ListByVendor(ctx, vendorID, status, page, pageSize)
}

func (v reservationView) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	return v.s.ListPendingBefore(ctx, cutoff)
}

func (v reservationView) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	return v.s.ListStartingBetween(ctx, from, to)
}

type paymentView struct{ s *Store }

func (v paymentView) Create(ctx context.Context, p *domain.Payment) error {
	return v.s.CreatePayment(ctx, p)
}

func (v paymentView) Update(ctx context.Context, p *domain.Payment) error {
	return v.s.UpdatePayment(ctx, p)
}

func (v paymentView) ListByReservation(ctx context.Context, reservationID int64) ([]domain.Payment, error) {
	return v.s.ListByReservation(ctx, reservationID)
}

func (v paymentView) RecordCaptureAndConfirm(ctx context.Context, p *domain.Payment, r *domain.Reservation) error {
	return v.s.RecordCaptureAndConfirm(ctx, p, r)
}

type notificationView struct{ s *Store }

func (v notificationView) Create(ctx context.Context, note *domain.Notification) error {
	return v.s.CreateNotification(ctx, note)
}

func (v notificationView) List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error) {
	return v.s.ListNotifications(ctx, userID, limit, offset)
}

func (v notificationView) MarkAsRead(ctx context.Context, id, userID int64) error {
	return v.s.MarkAsRead(ctx, id, userID)
}
