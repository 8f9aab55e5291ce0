package domain

import "time"

type Vendor struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// VendorHours is one weekday row of a vendor's operating-hours table.
// Open and Close are local times of day in "15:04" form.
type VendorHours struct {
	VendorID int64        `json:"vendor_id"`
	Weekday  time.Weekday `json:"weekday"`
	Open     string       `json:"open"`
	Close    string       `json:"close"`
	Closed   bool         `json:"closed"`
}

// VendorClosure is an ad-hoc closure date, e.g. a holiday or maintenance day.
type VendorClosure struct {
	VendorID int64     `json:"vendor_id"`
	Date     time.Time `json:"date"`
	Reason   string    `json:"reason"`
}
