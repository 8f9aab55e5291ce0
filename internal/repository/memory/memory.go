// Package memory implements the repository interfaces over in-process
// maps. It backs tests and the sandbox run mode, and enforces the same
// interval-exclusion rule on reservation insert that the postgres schema
// enforces with its exclusion constraint.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"motorent-backend/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	assets        map[int64]domain.RentalAsset
	vendors       map[int64]domain.Vendor
	hours         map[int64]map[time.Weekday]domain.VendorHours
	closures      map[int64][]domain.VendorClosure
	reservations  map[int64]domain.Reservation
	addOnLines    map[int64][]domain.ReservationAddOn
	payments      map[int64]domain.Payment
	coupons       map[int64]domain.Coupon
	addOns        map[int64]domain.AddOn
	notifications map[int64]domain.Notification

	nextReservationID  int64
	nextPaymentID      int64
	nextLineID         int64
	nextNotificationID int64
}

func NewStore() *Store {
	return &Store{
		assets:        make(map[int64]domain.RentalAsset),
		vendors:       make(map[int64]domain.Vendor),
		hours:         make(map[int64]map[time.Weekday]domain.VendorHours),
		closures:      make(map[int64][]domain.VendorClosure),
		reservations:  make(map[int64]domain.Reservation),
		addOnLines:    make(map[int64][]domain.ReservationAddOn),
		payments:      make(map[int64]domain.Payment),
		coupons:       make(map[int64]domain.Coupon),
		addOns:        make(map[int64]domain.AddOn),
		notifications: make(map[int64]domain.Notification),
	}
}

// Seed helpers used by tests and the sandbox bootstrap.

func (s *Store) PutAsset(a domain.RentalAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.ID] = a
}

func (s *Store) PutVendor(v domain.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[v.ID] = v
}

func (s *Store) PutHours(h domain.VendorHours) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hours[h.VendorID] == nil {
		s.hours[h.VendorID] = make(map[time.Weekday]domain.VendorHours)
	}
	s.hours[h.VendorID][h.Weekday] = h
}

func (s *Store) PutClosure(c domain.VendorClosure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closures[c.VendorID] = append(s.closures[c.VendorID], c)
}

func (s *Store) PutCoupon(c domain.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[c.ID] = c
}

func (s *Store) PutAddOn(a domain.AddOn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addOns[a.ID] = a
}

// AssetRepository

func (s *Store) GetByID(ctx context.Context, id int64) (*domain.RentalAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, domain.E(domain.CodeNotFound, "asset %d not found", id)
	}
	copied := a
	return &copied, nil
}

// VendorRepository

func (s *Store) GetVendorByID(ctx context.Context, id int64) (*domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[id]
	if !ok {
		return nil, domain.E(domain.CodeNotFound, "vendor %d not found", id)
	}
	copied := v
	return &copied, nil
}

func (s *Store) GetHours(ctx context.Context, vendorID int64, weekday time.Weekday) (*domain.VendorHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byDay, ok := s.hours[vendorID]
	if !ok {
		return nil, nil
	}
	h, ok := byDay[weekday]
	if !ok {
		return nil, nil
	}
	copied := h
	return &copied, nil
}

func (s *Store) ListClosures(ctx context.Context, vendorID int64, from, to time.Time) ([]domain.VendorClosure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.VendorClosure
	for _, c := range s.closures[vendorID] {
		day := truncateDay(c.Date)
		if !day.Before(truncateDay(from)) && !day.After(truncateDay(to)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ReservationRepository

func (s *Store) Create(ctx context.Context, rv *domain.Reservation, addOns []domain.ReservationAddOn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conflict := &domain.IntervalConflictError{AssetID: rv.AssetID}
	for _, existing := range s.reservations {
		if existing.AssetID != rv.AssetID || !existing.Status.IsActive() {
			continue
		}
		if existing.Overlaps(rv.StartAt, rv.EndAt) {
			conflict.ReservationIDs = append(conflict.ReservationIDs, existing.ID)
			if existing.EndAt.After(conflict.NextAvailable) {
				conflict.NextAvailable = existing.EndAt
			}
		}
	}
	if len(conflict.ReservationIDs) > 0 {
		sort.Slice(conflict.ReservationIDs, func(i, j int) bool {
			return conflict.ReservationIDs[i] < conflict.ReservationIDs[j]
		})
		return conflict
	}

	s.nextReservationID++
	rv.ID = s.nextReservationID
	now := time.Now()
	rv.CreatedAt = now
	rv.UpdatedAt = now
	s.reservations[rv.ID] = *rv

	for i := range addOns {
		s.nextLineID++
		addOns[i].ID = s.nextLineID
		addOns[i].ReservationID = rv.ID
	}
	s.addOnLines[rv.ID] = append([]domain.ReservationAddOn(nil), addOns...)
	return nil
}

func (s *Store) GetReservationByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rv, ok := s.reservations[id]
	if !ok {
		return nil, domain.E(domain.CodeNotFound, "reservation %d not found", id)
	}
	copied := rv
	return &copied, nil
}

func (s *Store) Update(ctx context.Context, rv *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[rv.ID]; !ok {
		return domain.E(domain.CodeNotFound, "reservation %d not found", rv.ID)
	}
	rv.UpdatedAt = time.Now()
	s.reservations[rv.ID] = *rv
	return nil
}

func (s *Store) ListOverlapping(ctx context.Context, assetID int64, start, end time.Time) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reservation
	for _, rv := range s.reservations {
		if rv.AssetID == assetID && rv.Status.IsActive() && rv.Overlaps(start, end) {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (s *Store) ListAddOns(ctx context.Context, reservationID int64) ([]domain.ReservationAddOn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ReservationAddOn(nil), s.addOnLines[reservationID]...), nil
}

func (s *Store) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return s.listReservations(func(rv *domain.Reservation) bool { return rv.RenterID == renterID }, status, page, pageSize)
}

func (s *Store) ListByVendor(ctx context.Context, vendorID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return s.listReservations(func(rv *domain.Reservation) bool { return rv.VendorID == vendorID }, status, page, pageSize)
}

func (s *Store) listReservations(match func(*domain.Reservation) bool, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.Reservation
	for _, rv := range s.reservations {
		if !match(&rv) {
			continue
		}
		if status != "" && !strings.EqualFold(status, string(rv.Status)) {
			continue
		}
		all = append(all, rv)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	count := int32(len(all))
	start := (page - 1) * pageSize
	if start >= count {
		return nil, count, nil
	}
	end := start + pageSize
	if end > count {
		end = count
	}
	return all[start:end], count, nil
}

func (s *Store) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reservation
	for _, rv := range s.reservations {
		if rv.Status == domain.ReservationStatusPending && rv.CreatedAt.Before(cutoff) {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reservation
	for _, rv := range s.reservations {
		if rv.Status == domain.ReservationStatusConfirmed && !rv.StartAt.Before(from) && rv.StartAt.Before(to) {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

// PaymentRepository

func (s *Store) CreatePayment(ctx context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertPaymentLocked(p)
	return nil
}

func (s *Store) insertPaymentLocked(p *domain.Payment) {
	s.nextPaymentID++
	p.ID = s.nextPaymentID
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.payments[p.ID] = *p
}

func (s *Store) UpdatePayment(ctx context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; !ok {
		return domain.E(domain.CodeNotFound, "payment %d not found", p.ID)
	}
	p.UpdatedAt = time.Now()
	s.payments[p.ID] = *p
	return nil
}

func (s *Store) ListByReservation(ctx context.Context, reservationID int64) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Payment
	for _, p := range s.payments {
		if p.ReservationID == reservationID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) RecordCaptureAndConfirm(ctx context.Context, p *domain.Payment, rv *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.reservations[rv.ID]
	if !ok {
		return domain.E(domain.CodeNotFound, "reservation %d not found", rv.ID)
	}
	if current.Status != domain.ReservationStatusPending {
		return domain.E(domain.CodeConflict, "reservation %d is no longer pending", rv.ID)
	}
	s.insertPaymentLocked(p)
	rv.UpdatedAt = time.Now()
	s.reservations[rv.ID] = *rv
	return nil
}

// CouponRepository

func (s *Store) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.coupons {
		if strings.EqualFold(c.Code, code) {
			copied := c
			return &copied, nil
		}
	}
	return nil, domain.E(domain.CodeInvalidCoupon, "coupon %s not found", code)
}

func (s *Store) IncrementUsage(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[id]
	if !ok {
		return domain.E(domain.CodeNotFound, "coupon %d not found", id)
	}
	c.UsedCount++
	s.coupons[id] = c
	return nil
}

func (s *Store) CountUsesByRenter(ctx context.Context, couponID, renterID int64) (int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int32
	for _, rv := range s.reservations {
		if rv.CouponID != nil && *rv.CouponID == couponID && rv.RenterID == renterID && rv.Status != domain.ReservationStatusCancelled {
			count++
		}
	}
	return count, nil
}

// AddOnRepository

func (s *Store) ListByIDs(ctx context.Context, ids []int64) ([]domain.AddOn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AddOn
	for _, id := range ids {
		if a, ok := s.addOns[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// NotificationRepository

func (s *Store) CreateNotification(ctx context.Context, note *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNotificationID++
	note.ID = s.nextNotificationID
	note.CreatedOn = time.Now()
	s.notifications[note.ID] = *note
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	count := int32(len(all))
	if offset >= count {
		return nil, count, nil
	}
	end := offset + limit
	if end > count {
		end = count
	}
	return all[offset:end], count, nil
}

func (s *Store) MarkAsRead(ctx context.Context, id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return domain.E(domain.CodeNotFound, "notification %d not found", id)
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}
