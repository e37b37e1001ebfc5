package users

type ListUsersQuery struct {
	Page    int    `query:"page" default:"1" validate:"min=1"`
	Keyword string `query:"keyword" mod:"trim" validate:"max=200"`
}

type CreateUserPayload struct {
	Email       string  `json:"email" mod:"trim" validate:"required,email"`
	Name        string  `json:"name" mod:"trim" validate:"required,max=100"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Password    string  `json:"password" validate:"required,min=8"`
	Role        string  `json:"role" validate:"required,oneof=user librarian admin"`
}

type UpdateUserPayload struct {
	Email       *string `json:"email" mod:"trim" validate:"omitempty,email"`
	Name        *string `json:"name" mod:"trim" validate:"omitempty,min=1,max=100"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Role        *string `json:"role" validate:"omitempty,oneof=user librarian admin"`
	Disabled    *bool   `json:"disabled"`
}

type RegisterPayload struct {
	Email       string  `json:"email" mod:"trim" validate:"required,email"`
	Name        string  `json:"name" mod:"trim" validate:"required,max=100"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Password    string  `json:"password" validate:"required,min=8"`
}

type VerifyEmailPayload struct {
	Token string `json:"token" mod:"trim" validate:"required,max=200"`
}

type RequestPasswordResetPayload struct {
	Email string `json:"email" mod:"trim" validate:"required,email"`
}

type ConfirmPasswordResetPayload struct {
	Token    string `json:"token" mod:"trim" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateDisplayNamePayload struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
}
