package tags

type ListTagsQuery struct {
	Page int `query:"page" default:"1" validate:"min=1"`
}

type CreateTagPayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=100"`
}

type UpdateTagPayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=100"`
}
