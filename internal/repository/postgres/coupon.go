package postgres

import (
	"context"
	"database/sql"
	"errors"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/repository"
)

type couponRepository struct {
	db *sql.DB
}

func NewCouponRepository(db *sql.DB) repository.CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	c := &domain.Coupon{}
	query := `SELECT id, code, type, value, max_discount_yen, min_order_yen, usage_limit, used_count, per_renter_limit, valid_from, valid_until, active
	          FROM coupons WHERE code = $1`
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Type, &c.Value, &c.MaxDiscountYen, &c.MinOrderYen,
		&c.UsageLimit, &c.UsedCount, &c.PerRenterLimit, &c.ValidFrom, &c.ValidUntil, &c.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.CodeInvalidCoupon, "coupon %s not found", code)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *couponRepository) IncrementUsage(ctx context.Context, id int64) error {
	query := `UPDATE coupons SET used_count = used_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *couponRepository) CountUsesByRenter(ctx context.Context, couponID, renterID int64) (int32, error) {
	// Cancelled bookings do not count against the renter's limit.
	query := `SELECT count(*) FROM reservations WHERE coupon_id = $1 AND renter_id = $2 AND status <> $3`
	var count int32
	err := r.db.QueryRowContext(ctx, query, couponID, renterID, domain.ReservationStatusCancelled).Scan(&count)
	return count, err
}
