package ndl

type LookupQuery struct {
	ISBN string `query:"isbn" mod:"trim" validate:"required,isbn_loose"`
}
