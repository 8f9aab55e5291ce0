package domain

import (
	"math"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusInUse     ReservationStatus = "in_use"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// ActiveStatuses are the statuses that occupy the asset's calendar.
// Two reservations in any of these may never overlap on the same asset.
var ActiveStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusInUse,
}

// legalTransitions is the single source of truth for the reservation
// lifecycle. Every status write goes through CanTransition first.
var legalTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusNoShow},
	ReservationStatusConfirmed: {ReservationStatusInUse, ReservationStatusCompleted, ReservationStatusCancelled, ReservationStatusNoShow},
	ReservationStatusInUse:     {ReservationStatusCompleted, ReservationStatusNoShow},
}

// CanTransition reports whether moving a reservation from one status to
// another is legal. Terminal statuses have no outgoing transitions.
func CanTransition(from, to ReservationStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func (s ReservationStatus) IsTerminal() bool {
	return len(legalTransitions[s]) == 0
}

func (s ReservationStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

type Reservation struct {
	ID       int64 `json:"id"`
	RenterID int64 `json:"renter_id"`
	VendorID int64 `json:"vendor_id"`
	AssetID  int64 `json:"asset_id"`

	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Tier    string    `json:"tier"`

	Status ReservationStatus `json:"status"`

	// Money snapshot, all in yen. IncidentYen is always zero at booking
	// time; it is only realized by the incident settlement flow.
	BaseYen     int64 `json:"base_yen"`
	AddOnYen    int64 `json:"addon_yen"`
	CoverageYen int64 `json:"coverage_yen"`
	IncidentYen int64 `json:"incident_yen"`
	DiscountYen int64 `json:"discount_yen"`
	TotalYen    int64 `json:"total_yen"`
	OvertimeYen int64 `json:"overtime_yen"`

	CouponID   *int64 `json:"coupon_id,omitempty"`
	CouponCode string `json:"coupon_code,omitempty"`

	Notes        string     `json:"notes"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overlaps reports half-open interval intersection with [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartAt.Before(end) && r.EndAt.After(start)
}

// OvertimeHours is the number of billable late hours at checkout,
// rounded up to whole hours. Zero when the return is on time.
func (r *Reservation) OvertimeHours(actualEnd time.Time) int64 {
	if !actualEnd.After(r.EndAt) {
		return 0
	}
	return int64(math.Ceil(actualEnd.Sub(r.EndAt).Hours()))
}
