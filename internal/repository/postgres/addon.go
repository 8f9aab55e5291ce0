package postgres

import (
	"context"
	"database/sql"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/repository"

	"github.com/lib/pq"
)

type addOnRepository struct {
	db *sql.DB
}

func NewAddOnRepository(db *sql.DB) repository.AddOnRepository {
	return &addOnRepository{db: db}
}

func (r *addOnRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.AddOn, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, vendor_id, name, price_yen, unit, active FROM addons WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addOns []domain.AddOn
	for rows.Next() {
		var a domain.AddOn
		if err := rows.Scan(&a.ID, &a.VendorID, &a.Name, &a.PriceYen, &a.Unit, &a.Active); err != nil {
			return nil, err
		}
		addOns = append(addOns, a)
	}
	return addOns, rows.Err()
}
