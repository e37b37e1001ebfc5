package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Favorite struct {
	bun.BaseModel `bun:"table:user_favorites,alias:f"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	UserID    int       `bun:",nullzero" json:"user_id"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	CreatedAt time.Time `json:"created_at"`

	Book *Book `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
}
