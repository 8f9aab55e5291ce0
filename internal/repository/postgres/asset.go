package postgres

import (
	"context"
	"database/sql"
	"errors"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/repository"
)

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) repository.AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) GetByID(ctx context.Context, id int64) (*domain.RentalAsset, error) {
	a := &domain.RentalAsset{}
	query := `SELECT id, vendor_id, name, size_class, rate_2h_yen, rate_4h_yen, rate_day_yen, rate_24h_yen, rate_32h_yen,
	                 coverage_daily_yen, overtime_hourly_yen, available, created_at
	          FROM rental_assets WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.VendorID, &a.Name, &a.SizeClass,
		&a.Rate2hYen, &a.Rate4hYen, &a.RateDayYen, &a.Rate24hYen, &a.Rate32hYen,
		&a.CoverageDailyYen, &a.OvertimeHourlyYen, &a.Available, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.CodeNotFound, "asset %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
