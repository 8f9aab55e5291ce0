package pricing

import (
	"time"

	"motorent-backend/internal/domain"
)

// EvaluateCoupon validates a coupon against the base rental charge and
// returns the discount in yen. The discount base excludes coverage and
// add-ons. renterUses is how many times this renter has already redeemed
// the coupon; the caller supplies it along with now so the evaluation
// stays deterministic.
func EvaluateCoupon(c *domain.Coupon, baseYen int64, now time.Time, renterUses int32) (int64, error) {
	if c == nil {
		return 0, domain.E(domain.CodeInvalidCoupon, "coupon not found")
	}
	if !c.Active || now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return 0, domain.E(domain.CodeCouponNotActive, "coupon %s is not active", c.Code)
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return 0, domain.E(domain.CodeCouponExhausted, "coupon %s has reached its usage limit", c.Code)
	}
	if c.PerRenterLimit > 0 && renterUses >= c.PerRenterLimit {
		return 0, domain.E(domain.CodeCouponExhausted, "coupon %s already used the maximum number of times", c.Code)
	}
	if baseYen < c.MinOrderYen {
		return 0, domain.E(domain.CodeMinimumNotMet, "order must be at least %d yen to use coupon %s", c.MinOrderYen, c.Code)
	}

	var discount int64
	switch c.Type {
	case domain.CouponTypeFixed:
		discount = c.Value
	case domain.CouponTypePercentage:
		discount = baseYen * c.Value / 100
		if c.MaxDiscountYen > 0 && discount > c.MaxDiscountYen {
			discount = c.MaxDiscountYen
		}
	default:
		return 0, domain.E(domain.CodeInvalidCoupon, "unknown coupon type %q", c.Type)
	}

	if discount < 0 {
		discount = 0
	}
	if discount > baseYen {
		discount = baseYen
	}
	return discount, nil
}
