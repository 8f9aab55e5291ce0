package domain

import "time"

type Notification struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Read       bool              `json:"read"`
	CreatedOn  time.Time         `json:"created_on"`
}

type EffectTemplate string

const (
	EffectReservationRequested EffectTemplate = "reservation_requested"
	EffectReservationConfirmed EffectTemplate = "reservation_confirmed"
	EffectReservationCancelled EffectTemplate = "reservation_cancelled"
	EffectCheckoutReceipt      EffectTemplate = "checkout_receipt"
	EffectRefundFailed         EffectTemplate = "refund_failed"
	EffectNoShowRecorded       EffectTemplate = "no_show_recorded"
	EffectPickupReminder       EffectTemplate = "pickup_reminder"
)

// Effect is a side effect queued by a core operation and executed by the
// dispatcher outside the transactional path. A failed effect is logged,
// never surfaced as the request's error.
type Effect struct {
	UserID   int64             `json:"user_id"`
	Email    string            `json:"email,omitempty"`
	Template EffectTemplate    `json:"template"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Data     map[string]string `json:"data,omitempty"`
}
