package inventory

type CheckBookPayload struct {
	ISBN string `json:"isbn" mod:"trim" validate:"required,isbn_loose"`
}

type ListQuery struct {
	Page int `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
}
