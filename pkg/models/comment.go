package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Comment is immutable after creation; there is no edit path.
type Comment struct {
	bun.BaseModel `bun:"table:book_comments,alias:c"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	UserID    int       `bun:",nullzero" json:"user_id"`
	Body      string    `bun:",nullzero" json:"body"`
	CreatedAt time.Time `json:"created_at"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}
