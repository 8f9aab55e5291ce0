package domain

import "time"

type CouponType string

const (
	CouponTypeFixed      CouponType = "FIXED"
	CouponTypePercentage CouponType = "PERCENTAGE"
)

type Coupon struct {
	ID   int64      `json:"id"`
	Code string     `json:"code"`
	Type CouponType `json:"type"`

	// Value is a yen amount for FIXED coupons and a percentage for
	// PERCENTAGE coupons.
	Value int64 `json:"value"`
	// MaxDiscountYen caps a percentage discount. Zero means no cap.
	MaxDiscountYen int64 `json:"max_discount_yen"`
	MinOrderYen    int64 `json:"min_order_yen"`

	// UsageLimit zero means unlimited. UsedCount is the running counter.
	UsageLimit     int32     `json:"usage_limit"`
	UsedCount      int32     `json:"used_count"`
	PerRenterLimit int32     `json:"per_renter_limit"`
	ValidFrom      time.Time `json:"valid_from"`
	ValidUntil     time.Time `json:"valid_until"`
	Active         bool      `json:"active"`
}
