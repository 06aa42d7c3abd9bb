package item

type CreateItemReq struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	DailyPrice  float64  `json:"daily_price" validate:"gte=0"`
	Deposit     float64  `json:"deposit" validate:"gte=0"`
	Quantity    int      `json:"quantity" validate:"gte=0"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	// ImageBase64 is optional; a failed upload never blocks the listing.
	ImageBase64      string `json:"image_base64,omitempty"`
	ImageContentType string `json:"image_content_type,omitempty"`
}
