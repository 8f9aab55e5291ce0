package domain

import "time"

type PaymentChannel string

const (
	PaymentChannelOnline PaymentChannel = "ONLINE"
	PaymentChannelCash   PaymentChannel = "CASH"
	PaymentChannelCard   PaymentChannel = "CARD"
)

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusCompleted         PaymentStatus = "COMPLETED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// Payment is one captured (or in-person settled) amount against a
// reservation. A reservation may carry several payments, e.g. an online
// deposit plus a day-of top-up at the counter.
type Payment struct {
	ID            int64          `json:"id"`
	ReservationID int64          `json:"reservation_id"`
	VendorID      int64          `json:"vendor_id"`
	Channel       PaymentChannel `json:"channel"`
	// ExternalTxID is the gateway transaction reference; empty for
	// in-person settlements.
	ExternalTxID string        `json:"external_tx_id,omitempty"`
	AmountYen    int64         `json:"amount_yen"`
	Currency     string        `json:"currency"`
	Status       PaymentStatus `json:"status"`
	RefundedYen  int64         `json:"refunded_yen"`
	RefundID     string        `json:"refund_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Refundable is the amount still eligible for refund on this payment.
func (p *Payment) Refundable() int64 {
	if p.Status != PaymentStatusCompleted && p.Status != PaymentStatusPartiallyRefunded {
		return 0
	}
	if p.ExternalTxID == "" {
		return 0
	}
	return p.AmountYen - p.RefundedYen
}
