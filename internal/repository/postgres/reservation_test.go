package postgres

import (
	"context"
	"testing"
	"time"

	"motorent-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reservationTestColumns = []string{
	"id", "renter_id", "vendor_id", "asset_id", "start_at", "end_at", "tier", "status",
	"base_yen", "addon_yen", "coverage_yen", "incident_yen", "discount_yen", "total_yen", "overtime_yen",
	"coupon_id", "coupon_code", "notes", "cancel_reason", "cancelled_at", "checked_out_at",
	"created_at", "updated_at",
}

func addReservationRow(rows *sqlmock.Rows, id int64, status domain.ReservationStatus, start, end time.Time) {
	rows.AddRow(id, int64(42), int64(1), int64(1), start, end, "day", string(status),
		int64(6800), int64(0), int64(0), int64(0), int64(0), int64(6800), int64(0),
		nil, "", "", "", nil, nil, time.Now(), time.Now())
}

func TestReservationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	start := time.Date(2027, 4, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		rv := &domain.Reservation{
			RenterID: 42,
			VendorID: 1,
			AssetID:  1,
			StartAt:  start,
			EndAt:    end,
			Tier:     "day",
			Status:   domain.ReservationStatusPending,
			BaseYen:  6800,
			TotalYen: 6800,
		}
		lines := []domain.ReservationAddOn{
			{AddOnID: 1, Name: "Helmet", Quantity: 1, UnitPriceYen: 500, SubtotalYen: 500},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO reservations").
			WithArgs(rv.RenterID, rv.VendorID, rv.AssetID, rv.StartAt, rv.EndAt, rv.Tier, rv.Status,
				rv.BaseYen, rv.AddOnYen, rv.CoverageYen, rv.IncidentYen, rv.DiscountYen, rv.TotalYen, rv.OvertimeYen,
				rv.CouponID, rv.CouponCode, rv.Notes, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery("INSERT INTO reservation_addons").
			WithArgs(int64(7), lines[0].AddOnID, lines[0].Name, lines[0].Quantity, lines[0].UnitPriceYen, lines[0].SubtotalYen).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectCommit()

		err := repo.Create(ctx, rv, lines)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), rv.ID)
		assert.Equal(t, int64(11), lines[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExclusionViolationBecomesIntervalConflict", func(t *testing.T) {
		rv := &domain.Reservation{
			RenterID: 43,
			VendorID: 1,
			AssetID:  1,
			StartAt:  start,
			EndAt:    end,
			Tier:     "day",
			Status:   domain.ReservationStatusPending,
		}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO reservations").
			WillReturnError(&pq.Error{Code: "23P01", Constraint: "reservations_no_overlap"})

		existing := sqlmock.NewRows(reservationTestColumns)
		addReservationRow(existing, 7, domain.ReservationStatusConfirmed, start, end)
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WillReturnRows(existing)
		mock.ExpectRollback()

		err := repo.Create(ctx, rv, nil)
		var conflict *domain.IntervalConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []int64{7}, conflict.ReservationIDs)
		assert.Equal(t, end, conflict.NextAvailable.UTC())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		start := time.Date(2027, 4, 5, 9, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows(reservationTestColumns)
		addReservationRow(rows, 7, domain.ReservationStatusConfirmed, start, start.Add(8*time.Hour))

		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = \\$1").
			WithArgs(int64(7)).
			WillReturnRows(rows)

		rv, err := repo.GetByID(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), rv.ID)
		assert.Equal(t, domain.ReservationStatusConfirmed, rv.Status)
		assert.Equal(t, int64(6800), rv.TotalYen)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = \\$1").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(reservationTestColumns))

		_, err := repo.GetByID(ctx, 99)
		assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
	})
}

func TestReservationRepository_ListByRenter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	start := time.Date(2027, 4, 5, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM").
		WithArgs(int64(42), "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows(reservationTestColumns)
	addReservationRow(rows, 7, domain.ReservationStatusPending, start, start.Add(8*time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE renter_id = \\$1 AND status = \\$2").
		WithArgs(int64(42), "pending", int32(20), int32(0)).
		WillReturnRows(rows)

	reservations, total, err := repo.ListByRenter(ctx, 42, "pending", 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), total)
	require.Len(t, reservations, 1)
	assert.Equal(t, int64(7), reservations[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
