package service

import (
	"context"
	"errors"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/logger"
	"motorent-backend/internal/repository"
)

type availabilityService struct {
	assetRepo       repository.AssetRepository
	vendorRepo      repository.VendorRepository
	reservationRepo repository.ReservationRepository
}

func NewAvailabilityService(
	assetRepo repository.AssetRepository,
	vendorRepo repository.VendorRepository,
	reservationRepo repository.ReservationRepository,
) AvailabilityService {
	return &availabilityService{
		assetRepo:       assetRepo,
		vendorRepo:      vendorRepo,
		reservationRepo: reservationRepo,
	}
}

func (s *availabilityService) Verify(ctx context.Context, assetID int64, start, end time.Time) (*domain.RentalAsset, error) {
	if !start.Before(end) {
		return nil, domain.E(domain.CodeValidation, "start must be before end")
	}

	// 1. The asset must exist and be generally available.
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		if domain.CodeOf(err) == domain.CodeNotFound {
			return nil, domain.E(domain.CodeAssetUnavailable, "asset %d is not available for rental", assetID)
		}
		return nil, err
	}
	if !asset.Available {
		return nil, domain.E(domain.CodeAssetUnavailable, "asset %d is not available for rental", assetID)
	}

	// 2. No active reservation may overlap the requested interval.
	existing, err := s.reservationRepo.ListOverlapping(ctx, assetID, start, end)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		conflict := &domain.IntervalConflictError{AssetID: assetID}
		for _, rv := range existing {
			conflict.ReservationIDs = append(conflict.ReservationIDs, rv.ID)
			if rv.EndAt.After(conflict.NextAvailable) {
				conflict.NextAvailable = rv.EndAt
			}
		}
		return nil, conflict
	}

	// 3. No vendor closure date may fall inside the rental days.
	closures, err := s.vendorRepo.ListClosures(ctx, asset.VendorID, start, end)
	if err != nil {
		return nil, err
	}
	if len(closures) > 0 {
		first := closures[0]
		return nil, domain.E(domain.CodeVendorClosed, "vendor is closed on %s: %s",
			first.Date.Format("2006-01-02"), first.Reason)
	}

	// 4. Pickup must fall inside the vendor's operating hours when the
	// vendor publishes hours for that weekday.
	hours, err := s.vendorRepo.GetHours(ctx, asset.VendorID, start.Weekday())
	if err != nil {
		return nil, err
	}
	if hours != nil {
		if hours.Closed {
			return nil, domain.E(domain.CodeOutsideBusinessHours, "vendor is closed on %s", start.Weekday())
		}
		// HH:MM strings compare correctly byte-wise; [open, close).
		tod := start.Format("15:04")
		if tod < hours.Open || tod >= hours.Close {
			return nil, domain.E(domain.CodeOutsideBusinessHours, "pickup at %s is outside business hours %s-%s",
				tod, hours.Open, hours.Close)
		}
	}

	return asset, nil
}

func (s *availabilityService) Check(ctx context.Context, assetID int64, start, end time.Time) (*AvailabilityResult, error) {
	logger.EnterMethod("availabilityService.Check", "asset_id", assetID)

	_, err := s.Verify(ctx, assetID, start, end)
	if err == nil {
		return &AvailabilityResult{Available: true}, nil
	}

	code := domain.CodeOf(err)
	switch code {
	case domain.CodeAssetUnavailable, domain.CodeVendorClosed, domain.CodeOutsideBusinessHours:
		return &AvailabilityResult{Available: false, Reason: code, Message: rejectionMessage(err)}, nil
	case domain.CodeIntervalConflict:
		var conflict *domain.IntervalConflictError
		if errors.As(err, &conflict) {
			next := conflict.NextAvailable
			return &AvailabilityResult{
				Available:     false,
				Reason:        code,
				Message:       rejectionMessage(err),
				ConflictIDs:   conflict.ReservationIDs,
				NextAvailable: &next,
			}, nil
		}
		return &AvailabilityResult{Available: false, Reason: code, Message: rejectionMessage(err)}, nil
	default:
		logger.ExitMethodWithError("availabilityService.Check", err, "asset_id", assetID)
		return nil, err
	}
}

// rejectionMessage strips the code prefix a domain.Error prints.
func rejectionMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
