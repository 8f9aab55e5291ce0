package pricing

import (
	"testing"
	"time"

	"motorent-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCoupon() *domain.Coupon {
	return &domain.Coupon{
		ID:             1,
		Code:           "WELCOME10",
		Type:           domain.CouponTypePercentage,
		Value:          10,
		MaxDiscountYen: 2000,
		ValidFrom:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		Active:         true,
	}
}

var evalNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func TestEvaluateCoupon_PercentageWithCap(t *testing.T) {
	c := testCoupon()

	// 10% of 25,000 is 2,500, capped at 2,000.
	d, err := EvaluateCoupon(c, 25000, evalNow, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), d)

	// Under the cap the raw percentage applies.
	d, err = EvaluateCoupon(c, 8000, evalNow, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(800), d)

	// No cap configured.
	c.MaxDiscountYen = 0
	d, err = EvaluateCoupon(c, 25000, evalNow, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), d)
}

func TestEvaluateCoupon_Fixed(t *testing.T) {
	c := testCoupon()
	c.Type = domain.CouponTypeFixed
	c.Value = 1500

	d, err := EvaluateCoupon(c, 8000, evalNow, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), d)

	// Discount never exceeds the base amount.
	d, err = EvaluateCoupon(c, 1000, evalNow, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), d)
}

func TestEvaluateCoupon_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *domain.Coupon)
		base     int64
		uses     int32
		wantCode domain.ErrorCode
	}{
		{"inactive", func(c *domain.Coupon) { c.Active = false }, 8000, 0, domain.CodeCouponNotActive},
		{"expired", func(c *domain.Coupon) { c.ValidUntil = evalNow.Add(-time.Hour) }, 8000, 0, domain.CodeCouponNotActive},
		{"not yet valid", func(c *domain.Coupon) { c.ValidFrom = evalNow.Add(time.Hour) }, 8000, 0, domain.CodeCouponNotActive},
		{"usage limit reached", func(c *domain.Coupon) { c.UsageLimit = 5; c.UsedCount = 5 }, 8000, 0, domain.CodeCouponExhausted},
		{"per renter limit reached", func(c *domain.Coupon) { c.PerRenterLimit = 1 }, 8000, 1, domain.CodeCouponExhausted},
		{"below minimum order", func(c *domain.Coupon) { c.MinOrderYen = 10000 }, 8000, 0, domain.CodeMinimumNotMet},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := testCoupon()
			tc.mutate(c)
			_, err := EvaluateCoupon(c, tc.base, evalNow, tc.uses)
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, domain.CodeOf(err))
		})
	}
}

func TestEvaluateCoupon_NotFound(t *testing.T) {
	_, err := EvaluateCoupon(nil, 8000, evalNow, 0)
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidCoupon, domain.CodeOf(err))
}
