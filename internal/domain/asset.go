package domain

import "time"

type SizeClass string

const (
	SizeClassSmall SizeClass = "SMALL"
	SizeClassMid   SizeClass = "MID"
	SizeClassLarge SizeClass = "LARGE"
	SizeClassEV    SizeClass = "EV"
)

// TwoHourTierOffered reports whether the 2-hour rate tier exists for a class.
// Only small-displacement and EV units are rented in 2-hour blocks.
func (c SizeClass) TwoHourTierOffered() bool {
	return c == SizeClassSmall || c == SizeClassEV
}

// RentalAsset is a rentable vehicle unit owned by a vendor.
// The core reads assets; catalog mutation happens elsewhere.
type RentalAsset struct {
	ID        int64     `json:"id"`
	VendorID  int64     `json:"vendor_id"`
	Name      string    `json:"name"`
	SizeClass SizeClass `json:"size_class"`

	// Rate snapshot per duration tier, in yen. A zero rate means the
	// tier is not offered for this unit.
	Rate2hYen  int64 `json:"rate_2h_yen"`
	Rate4hYen  int64 `json:"rate_4h_yen"`
	RateDayYen int64 `json:"rate_day_yen"`
	Rate24hYen int64 `json:"rate_24h_yen"`
	Rate32hYen int64 `json:"rate_32h_yen"`

	CoverageDailyYen  int64 `json:"coverage_daily_yen"`
	OvertimeHourlyYen int64 `json:"overtime_hourly_yen"`

	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}
