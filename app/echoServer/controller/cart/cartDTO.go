package cart

type AddToCartReq struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
	Days   int   `json:"days" validate:"gte=0"`
}

type UpdateDurationReq struct {
	Days int `json:"days" validate:"gte=0"`
}
