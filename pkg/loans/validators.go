package loans

type CreateLoanPayload struct {
	BookID int  `json:"book_id" validate:"required,min=1"`
	UserID *int `json:"user_id,omitempty" validate:"omitempty,min=1"`
}

type ReturnLoanPayload struct {
	BookID int `json:"book_id" validate:"required,min=1"`
}

type ReceptionPayload struct {
	ISBN   string `json:"isbn" mod:"trim" validate:"required,isbn_loose"`
	QRData string `json:"qr_data" mod:"trim" validate:"required,max=500"`
}

type ListLoansQuery struct {
	Page    int    `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	Status  string `query:"status" json:"status,omitempty" default:"all" validate:"oneof=all active returned"`
	Keyword string `query:"keyword" json:"keyword,omitempty" validate:"omitempty,max=200"`
	UserID  *int   `query:"user_id" json:"user_id,omitempty" validate:"omitempty,min=1"`
}
