package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Loan links a user to a book for one lending period. A loan is active while
// returned_at is NULL; setting it is a one-way transition. Partial unique
// indexes on (book_id) and (user_id) where returned_at IS NULL enforce the
// one-active-loan-per-book and one-active-loan-per-user invariants at the
// storage layer, so concurrent check-outs cannot double-lend.
type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:l"`

	ID         int        `bun:",pk,nullzero" json:"id"`
	UserID     int        `bun:",nullzero" json:"user_id"`
	BookID     int        `bun:",nullzero" json:"book_id"`
	LentAt     time.Time  `json:"lent_at"`
	ReturnedAt *time.Time `json:"returned_at"`

	// Relations
	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Book *Book `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
}

// Active reports whether the book is still checked out.
func (l *Loan) Active() bool {
	return l.ReturnedAt == nil
}
