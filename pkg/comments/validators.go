package comments

type CreateCommentPayload struct {
	Body string `json:"body" mod:"trim" validate:"required,max=2000"`
}
