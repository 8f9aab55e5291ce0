package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/repository"
)

type vendorRepository struct {
	db *sql.DB
}

func NewVendorRepository(db *sql.DB) repository.VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) GetByID(ctx context.Context, id int64) (*domain.Vendor, error) {
	v := &domain.Vendor{}
	query := `SELECT id, name, email FROM vendors WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Name, &v.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.CodeNotFound, "vendor %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vendorRepository) GetHours(ctx context.Context, vendorID int64, weekday time.Weekday) (*domain.VendorHours, error) {
	h := &domain.VendorHours{}
	query := `SELECT vendor_id, weekday, open_time, close_time, closed FROM vendor_hours WHERE vendor_id = $1 AND weekday = $2`
	var wd int
	err := r.db.QueryRowContext(ctx, query, vendorID, int(weekday)).Scan(&h.VendorID, &wd, &h.Open, &h.Close, &h.Closed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	h.Weekday = time.Weekday(wd)
	return h, nil
}

func (r *vendorRepository) ListClosures(ctx context.Context, vendorID int64, from, to time.Time) ([]domain.VendorClosure, error) {
	query := `SELECT vendor_id, closure_date, reason FROM vendor_closures
	          WHERE vendor_id = $1 AND closure_date >= $2 AND closure_date <= $3
	          ORDER BY closure_date`
	rows, err := r.db.QueryContext(ctx, query, vendorID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closures []domain.VendorClosure
	for rows.Next() {
		var c domain.VendorClosure
		if err := rows.Scan(&c.VendorID, &c.Date, &c.Reason); err != nil {
			return nil, err
		}
		closures = append(closures, c)
	}
	return closures, rows.Err()
}
