// model/cart.go
package model

import "time"

// CartEntry is a borrower's staged, not-yet-submitted loan. At most one
// entry exists per (borrower, item); adding the same item again extends the
// duration instead. Nothing is reserved while an entry sits in the cart.
type CartEntry struct {
	ID         int64     `json:"id"`
	BorrowerID int64     `json:"borrower_id"`
	ItemID     int64     `json:"item_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Days       int       `json:"days"`
	Fee        float64   `json:"fee"`
	Deposit    float64   `json:"deposit"`
	CreatedAt  time.Time `json:"created_at"`
}
