package postgres

import (
	"database/sql"

	"motorent-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AssetRepository
	repository.VendorRepository
	repository.ReservationRepository
	repository.PaymentRepository
	repository.CouponRepository
	repository.AddOnRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		AssetRepository:        NewAssetRepository(db),
		VendorRepository:       NewVendorRepository(db),
		ReservationRepository:  NewReservationRepository(db),
		PaymentRepository:      NewPaymentRepository(db),
		CouponRepository:       NewCouponRepository(db),
		AddOnRepository:        NewAddOnRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
