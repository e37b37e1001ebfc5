package books

import "mime/multipart"

type ListBooksQuery struct {
	Page    int      `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	Keyword string   `query:"keyword" json:"keyword,omitempty" validate:"omitempty,max=200"`
	Tags    []string `query:"tags" json:"tags,omitempty" validate:"omitempty,dive,max=100"`
}

type CreateBookPayload struct {
	Title     string   `json:"title" mod:"trim" validate:"required,max=300"`
	Author    string   `json:"author" mod:"trim" validate:"required,max=200"`
	Publisher string   `json:"publisher" mod:"trim" validate:"required,max=200"`
	ISBN      string   `json:"isbn" mod:"trim" validate:"required,isbn_loose"`
	Tags      []string `json:"tags" validate:"omitempty,dive,max=100"`
}

type UpdateBookPayload struct {
	Title     *string  `json:"title,omitempty" mod:"trim" validate:"omitempty,max=300"`
	Author    *string  `json:"author,omitempty" mod:"trim" validate:"omitempty,max=200"`
	Publisher *string  `json:"publisher,omitempty" mod:"trim" validate:"omitempty,max=200"`
	ISBN      *string  `json:"isbn,omitempty" mod:"trim" validate:"omitempty,isbn_loose"`
	Tags      []string `json:"tags,omitempty" validate:"omitempty,dive,max=100"`
}

type UploadCoverPayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-"`
}
