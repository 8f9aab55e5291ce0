package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/repository"

	"github.com/lib/pq"
)

const reservationColumns = `id, renter_id, vendor_id, asset_id, start_at, end_at, tier, status,
	base_yen, addon_yen, coverage_yen, incident_yen, discount_yen, total_yen, overtime_yen,
	coupon_id, coupon_code, notes, cancel_reason, cancelled_at, checked_out_at, created_at, updated_at`

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, rv *domain.Reservation, addOns []domain.ReservationAddOn) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	query := `INSERT INTO reservations (renter_id, vendor_id, asset_id, start_at, end_at, tier, status,
	            base_yen, addon_yen, coverage_yen, incident_yen, discount_yen, total_yen, overtime_yen,
	            coupon_id, coupon_code, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	          RETURNING id`
	err = tx.QueryRowContext(ctx, query,
		rv.RenterID, rv.VendorID, rv.AssetID, rv.StartAt, rv.EndAt, rv.Tier, rv.Status,
		rv.BaseYen, rv.AddOnYen, rv.CoverageYen, rv.IncidentYen, rv.DiscountYen, rv.TotalYen, rv.OvertimeYen,
		rv.CouponID, rv.CouponCode, rv.Notes, now, now,
	).Scan(&rv.ID)
	if err != nil {
		return r.translateConflict(ctx, err, rv)
	}

	for i := range addOns {
		addOns[i].ReservationID = rv.ID
		lineQuery := `INSERT INTO reservation_addons (reservation_id, addon_id, name, quantity, unit_price_yen, subtotal_yen)
		              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		if err := tx.QueryRowContext(ctx, lineQuery,
			addOns[i].ReservationID, addOns[i].AddOnID, addOns[i].Name,
			addOns[i].Quantity, addOns[i].UnitPriceYen, addOns[i].SubtotalYen,
		).Scan(&addOns[i].ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	rv.CreatedAt = now
	rv.UpdatedAt = now
	return nil
}

// translateConflict maps an exclusion/unique violation on the asset
// interval constraint to the same IntervalConflictError the availability
// checker produces. The insert, not the checker, is the true
// serialization point against double-booking.
func (r *reservationRepository) translateConflict(ctx context.Context, err error, rv *domain.Reservation) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	if pqErr.Code != "23P01" && pqErr.Code != "23505" {
		return err
	}

	conflict := &domain.IntervalConflictError{AssetID: rv.AssetID}
	existing, listErr := r.ListOverlapping(ctx, rv.AssetID, rv.StartAt, rv.EndAt)
	if listErr == nil {
		for _, e := range existing {
			conflict.ReservationIDs = append(conflict.ReservationIDs, e.ID)
			if e.EndAt.After(conflict.NextAvailable) {
				conflict.NextAvailable = e.EndAt
			}
		}
	}
	if conflict.NextAvailable.IsZero() {
		conflict.NextAvailable = rv.EndAt
	}
	return conflict
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE id = $1`, reservationColumns)
	rv, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.CodeNotFound, "reservation %d not found", id)
	}
	return rv, err
}

func (r *reservationRepository) Update(ctx context.Context, rv *domain.Reservation) error {
	query := `UPDATE reservations SET status=$1, base_yen=$2, addon_yen=$3, coverage_yen=$4, incident_yen=$5,
	            discount_yen=$6, total_yen=$7, overtime_yen=$8, notes=$9, cancel_reason=$10,
	            cancelled_at=$11, checked_out_at=$12, updated_at=$13
	          WHERE id=$14`
	_, err := r.db.ExecContext(ctx, query,
		rv.Status, rv.BaseYen, rv.AddOnYen, rv.CoverageYen, rv.IncidentYen,
		rv.DiscountYen, rv.TotalYen, rv.OvertimeYen, rv.Notes, rv.CancelReason,
		rv.CancelledAt, rv.CheckedOutAt, time.Now(), rv.ID)
	return err
}

func (r *reservationRepository) ListOverlapping(ctx context.Context, assetID int64, start, end time.Time) ([]domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations
	          WHERE asset_id = $1 AND status = ANY($2) AND start_at < $3 AND end_at > $4
	          ORDER BY start_at`, reservationColumns)
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	rows, err := r.db.QueryContext(ctx, query, assetID, pq.Array(statuses), end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *reservationRepository) ListAddOns(ctx context.Context, reservationID int64) ([]domain.ReservationAddOn, error) {
	query := `SELECT id, reservation_id, addon_id, name, quantity, unit_price_yen, subtotal_yen
	          FROM reservation_addons WHERE reservation_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.ReservationAddOn
	for rows.Next() {
		var l domain.ReservationAddOn
		if err := rows.Scan(&l.ID, &l.ReservationID, &l.AddOnID, &l.Name, &l.Quantity, &l.UnitPriceYen, &l.SubtotalYen); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *reservationRepository) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return r.list(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *reservationRepository) ListByVendor(ctx context.Context, vendorID int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return r.list(ctx, "vendor_id", vendorID, status, page, pageSize)
}

func (r *reservationRepository) list(ctx context.Context, column string, id int64, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	offset := (page - 1) * pageSize
	base := fmt.Sprintf(`SELECT %s FROM reservations WHERE %s = $1`, reservationColumns, column)

	args := []interface{}{id}
	argIdx := 2
	if status != "" {
		base += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + base + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	base += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, base, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reservations, err := scanReservations(rows)
	if err != nil {
		return nil, 0, err
	}
	return reservations, count, nil
}

func (r *reservationRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE status = $1 AND created_at < $2 ORDER BY created_at`, reservationColumns)
	rows, err := r.db.QueryContext(ctx, query, domain.ReservationStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *reservationRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE status = $1 AND start_at >= $2 AND start_at < $3 ORDER BY start_at`, reservationColumns)
	rows, err := r.db.QueryContext(ctx, query, domain.ReservationStatusConfirmed, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	rv := &domain.Reservation{}
	err := row.Scan(
		&rv.ID, &rv.RenterID, &rv.VendorID, &rv.AssetID, &rv.StartAt, &rv.EndAt, &rv.Tier, &rv.Status,
		&rv.BaseYen, &rv.AddOnYen, &rv.CoverageYen, &rv.IncidentYen, &rv.DiscountYen, &rv.TotalYen, &rv.OvertimeYen,
		&rv.CouponID, &rv.CouponCode, &rv.Notes, &rv.CancelReason, &rv.CancelledAt, &rv.CheckedOutAt,
		&rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func scanReservations(rows *sql.Rows) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *rv)
	}
	return reservations, rows.Err()
}
