package jobs

import (
	"context"
	"fmt"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/logger"
)

// ExpireStalePendingReservations cancels reservations that were never
// paid within the pending TTL, freeing their intervals for other
// renters.
func (jr *JobRunner) ExpireStalePendingReservations() {
	jr.runWithRecovery("ExpireStalePendingReservations", func() {
		ctx := context.Background()

		ttl := time.Duration(jr.config.Booking.PendingTTLMinutes) * time.Minute
		cutoff := time.Now().UTC().Add(-ttl)

		stale, err := jr.reservationRepo.ListPendingBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale pending reservations", "error", err)
			return
		}

		count := 0
		for i := range stale {
			rv := &stale[i]
			now := time.Now().UTC()
			rv.Status = domain.ReservationStatusCancelled
			rv.CancelReason = "payment not completed in time"
			rv.CancelledAt = &now
			if err := jr.reservationRepo.Update(ctx, rv); err != nil {
				logger.Error("Failed to expire pending reservation", "reservation_id", rv.ID, "error", err)
				continue
			}
			count++

			jr.dispatcher.Dispatch([]domain.Effect{{
				UserID:   rv.RenterID,
				Template: domain.EffectReservationCancelled,
				Title:    "Reservation expired",
				Message:  fmt.Sprintf("Reservation %d was cancelled because payment was not completed within %d minutes.", rv.ID, jr.config.Booking.PendingTTLMinutes),
				Data:     map[string]string{"reservation_id": fmt.Sprintf("%d", rv.ID)},
			}})
		}

		logger.Info("Expired stale pending reservations", "count", count, "cutoff", cutoff)
	})
}

// SendPickupReminders notifies renters of confirmed reservations that
// start within the next day.
func (jr *JobRunner) SendPickupReminders() {
	jr.runWithRecovery("SendPickupReminders", func() {
		ctx := context.Background()

		from := time.Now().UTC()
		to := from.Add(24 * time.Hour)

		upcoming, err := jr.reservationRepo.ListStartingBetween(ctx, from, to)
		if err != nil {
			logger.Error("Failed to list upcoming reservations", "error", err)
			return
		}

		for i := range upcoming {
			rv := &upcoming[i]
			message := fmt.Sprintf("Reservation %d starts at %s.", rv.ID, rv.StartAt.Format(time.RFC3339))
			if vendor, err := jr.vendorRepo.GetByID(ctx, rv.VendorID); err == nil {
				message = fmt.Sprintf("Reservation %d starts at %s. Pickup at %s.", rv.ID, rv.StartAt.Format(time.RFC3339), vendor.Name)
			}
			jr.dispatcher.Dispatch([]domain.Effect{{
				UserID:   rv.RenterID,
				Template: domain.EffectPickupReminder,
				Title:    "Pickup reminder",
				Message:  message,
				Data:     map[string]string{"reservation_id": fmt.Sprintf("%d", rv.ID)},
			}})
		}

		logger.Info("Sent pickup reminders", "count", len(upcoming))
	})
}
