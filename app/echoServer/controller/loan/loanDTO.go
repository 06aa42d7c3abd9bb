package loan

type ExtensionReq struct {
	// Days is the proposed total rental duration, not an increment.
	Days int `json:"days" validate:"required,gt=0"`
}
