package postgres

import (
	"context"
	"database/sql"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	now := time.Now()
	query := `INSERT INTO payments (reservation_id, vendor_id, channel, external_tx_id, amount_yen, currency, status, refunded_yen, refund_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		p.ReservationID, p.VendorID, p.Channel, p.ExternalTxID, p.AmountYen, p.Currency,
		p.Status, p.RefundedYen, p.RefundID, now, now,
	).Scan(&p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET status=$1, refunded_yen=$2, refund_id=$3, updated_at=$4 WHERE id=$5`
	_, err := r.db.ExecContext(ctx, query, p.Status, p.RefundedYen, p.RefundID, time.Now(), p.ID)
	return err
}

func (r *paymentRepository) ListByReservation(ctx context.Context, reservationID int64) ([]domain.Payment, error) {
	query := `SELECT id, reservation_id, vendor_id, channel, external_tx_id, amount_yen, currency, status, refunded_yen, refund_id, created_at, updated_at
	          FROM payments WHERE reservation_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.ReservationID, &p.VendorID, &p.Channel, &p.ExternalTxID,
			&p.AmountYen, &p.Currency, &p.Status, &p.RefundedYen, &p.RefundID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) RecordCaptureAndConfirm(ctx context.Context, p *domain.Payment, rv *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	insert := `INSERT INTO payments (reservation_id, vendor_id, channel, external_tx_id, amount_yen, currency, status, refunded_yen, refund_id, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := tx.QueryRowContext(ctx, insert,
		p.ReservationID, p.VendorID, p.Channel, p.ExternalTxID, p.AmountYen, p.Currency,
		p.Status, p.RefundedYen, p.RefundID, now, now,
	).Scan(&p.ID); err != nil {
		return err
	}

	update := `UPDATE reservations SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`
	res, err := tx.ExecContext(ctx, update, rv.Status, now, rv.ID, domain.ReservationStatusPending)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.E(domain.CodeConflict, "reservation %d is no longer pending", rv.ID)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}
