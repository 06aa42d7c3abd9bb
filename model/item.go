// model/item.go
package model

import "time"

type Item struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	DailyPrice    float64   `json:"daily_price"`
	Deposit       float64   `json:"deposit"`
	TotalQty      int       `json:"total_quantity"`
	AvailableQty  int       `json:"available_quantity"`
	Location      string    `json:"location"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	ImageURL      *string   `json:"image_url,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Categories the listing form offers. Kept closed so filters stay meaningful.
var ItemCategories = []string{
	"bricolage",
	"jardinage",
	"cuisine",
	"sport",
	"electronique",
	"transport",
	"autre",
}

func ValidCategory(c string) bool {
	for _, k := range ItemCategories {
		if k == c {
			return true
		}
	}
	return false
}
