package domain

type AddOnUnit string

const (
	AddOnUnitPerDay AddOnUnit = "PER_DAY"
	AddOnUnitPerUse AddOnUnit = "PER_USE"
)

// AddOn is a vendor catalog item (helmet, ETC device, child seat ...).
type AddOn struct {
	ID       int64     `json:"id"`
	VendorID int64     `json:"vendor_id"`
	Name     string    `json:"name"`
	PriceYen int64     `json:"price_yen"`
	Unit     AddOnUnit `json:"unit"`
	Active   bool      `json:"active"`
}

// ReservationAddOn is a line item frozen at booking time. Later catalog
// price changes never touch it.
type ReservationAddOn struct {
	ID            int64  `json:"id"`
	ReservationID int64  `json:"reservation_id"`
	AddOnID       int64  `json:"addon_id"`
	Name          string `json:"name"`
	Quantity      int32  `json:"quantity"`
	UnitPriceYen  int64  `json:"unit_price_yen"`
	SubtotalYen   int64  `json:"subtotal_yen"`
}
