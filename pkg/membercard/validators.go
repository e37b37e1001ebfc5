package membercard

type ResolvePayload struct {
	QRData string `json:"qr_data" mod:"trim" validate:"required,max=500"`
}
