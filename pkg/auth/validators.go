package auth

// LoginPayload represents the login request body.
type LoginPayload struct {
	Email    string `json:"email" mod:"trim" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetupPayload represents the initial setup request body.
type SetupPayload struct {
	Email    string `json:"email" mod:"trim" validate:"required,email"`
	Name     string `json:"name" mod:"trim" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// StatusResponse represents the auth status response.
type StatusResponse struct {
	NeedsSetup bool `json:"needs_setup"`
}

// MeResponse represents the current user response.
type MeResponse struct {
	ID          int     `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	DisplayName *string `json:"display_name"`
	Role        string  `json:"role"`
}
