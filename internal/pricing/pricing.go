// Package pricing holds the pure financial calculators: the duration-tier
// quote and the coupon evaluator. Nothing here performs I/O or reads the
// clock; callers pass every input in, so identical inputs always produce
// identical output.
package pricing

import (
	"math"
	"time"

	"motorent-backend/internal/domain"
)

// Duration tier labels, ordered shortest first.
const (
	Tier2h       = "2h"
	Tier4h       = "4h"
	TierDay      = "day"
	Tier24h      = "24h"
	Tier32h      = "32h"
	TierMultiDay = "multi_day"
)

type AddOnSelection struct {
	AddOnID  int64 `json:"addon_id"`
	Quantity int32 `json:"quantity"`
}

type AddOnLine struct {
	AddOnID      int64  `json:"addon_id"`
	Name         string `json:"name"`
	Quantity     int32  `json:"quantity"`
	UnitPriceYen int64  `json:"unit_price_yen"`
	SubtotalYen  int64  `json:"subtotal_yen"`
}

// Breakdown is the price quote for a requested interval. Days is the
// billing day count used for per-day add-ons and coverage, minimum 1.
type Breakdown struct {
	Tier        string      `json:"tier"`
	Days        int64       `json:"days"`
	BaseYen     int64       `json:"base_yen"`
	CoverageYen int64       `json:"coverage_yen"`
	AddOnYen    int64       `json:"addon_yen"`
	Lines       []AddOnLine `json:"lines,omitempty"`
}

// Total is base + coverage + add-ons, before any coupon discount.
func (b *Breakdown) Total() int64 {
	return b.BaseYen + b.CoverageYen + b.AddOnYen
}

// Quote prices a requested interval against an asset's rate snapshot.
// catalog holds the add-on records for the renter's selections; entries
// that are missing or inactive are skipped without error, since a
// client-side selection can race with a vendor deactivating an add-on.
func Quote(asset *domain.RentalAsset, start, end time.Time, catalog []domain.AddOn, selections []AddOnSelection, withCoverage bool) (*Breakdown, error) {
	if !start.Before(end) {
		return nil, domain.E(domain.CodeValidation, "start must be before end")
	}

	hours := end.Sub(start).Hours()
	days := int64(math.Ceil(hours / 24))
	if days < 1 {
		days = 1
	}

	tier, base := selectTier(asset, hours, days)

	b := &Breakdown{Tier: tier, Days: days, BaseYen: base}

	if withCoverage {
		b.CoverageYen = asset.CoverageDailyYen * days
	}

	byID := make(map[int64]domain.AddOn, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}
	for _, sel := range selections {
		a, ok := byID[sel.AddOnID]
		if !ok || !a.Active {
			continue
		}
		qty := sel.Quantity
		if qty < 1 {
			qty = 1
		}
		subtotal := a.PriceYen * int64(qty)
		if a.Unit == domain.AddOnUnitPerDay {
			subtotal *= days
		}
		b.Lines = append(b.Lines, AddOnLine{
			AddOnID:      a.ID,
			Name:         a.Name,
			Quantity:     qty,
			UnitPriceYen: a.PriceYen,
			SubtotalYen:  subtotal,
		})
		b.AddOnYen += subtotal
	}

	return b, nil
}

// selectTier matches the shortest tier that covers the request, skipping
// tiers the asset does not offer (zero rate, or the 2-hour block on
// classes where it does not exist). Beyond the longest tier the price is
// per-day multiplication.
func selectTier(asset *domain.RentalAsset, hours float64, days int64) (string, int64) {
	if hours <= 2 && asset.SizeClass.TwoHourTierOffered() && asset.Rate2hYen > 0 {
		return Tier2h, asset.Rate2hYen
	}
	if hours <= 4 && asset.Rate4hYen > 0 {
		return Tier4h, asset.Rate4hYen
	}
	if hours <= 8 && asset.RateDayYen > 0 {
		return TierDay, asset.RateDayYen
	}
	if hours <= 24 && asset.Rate24hYen > 0 {
		return Tier24h, asset.Rate24hYen
	}
	if hours <= 32 && asset.Rate32hYen > 0 {
		return Tier32h, asset.Rate32hYen
	}
	return TierMultiDay, days * asset.RateDayYen
}
