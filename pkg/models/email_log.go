package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Email kinds recorded in the log.
const (
	EmailKindLoan              = "loan"
	EmailKindReturn            = "return"
	EmailKindReturnRequest     = "return_request"
	EmailKindPasswordReset     = "password_reset"
	EmailKindEmailVerification = "email_verification"
)

// EmailLog records one notification delivery attempt.
type EmailLog struct {
	bun.BaseModel `bun:"table:email_logs,alias:el"`

	ID              int       `bun:",pk,nullzero" json:"id"`
	Kind            string    `bun:",nullzero" json:"kind"`
	RecipientUserID *int      `json:"recipient_user_id"`
	RecipientEmail  string    `bun:",nullzero" json:"recipient_email"`
	Subject         string    `bun:",nullzero" json:"subject"`
	CreatedAt       time.Time `json:"created_at"`
}
