package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID             int       `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Title          string    `bun:",nullzero" json:"title"`
	Author         string    `bun:",nullzero" json:"author"`
	Publisher      string    `bun:",nullzero" json:"publisher"`
	ISBN           string    `bun:"isbn,nullzero" json:"isbn"`
	CoverImagePath *string   `json:"-"`

	// CoverURL is a signed, short-lived URL filled in by the books service.
	// It is never stored.
	CoverURL string `bun:"-" json:"cover_url,omitempty"`

	// Relations
	Tags []*BookTag `bun:"rel:has-many,join:id=book_id" json:"tags,omitempty"`
}

// NormalizeISBN strips hyphens and surrounding whitespace. The digits-only
// form is the canonical comparison key; books are stored pre-normalized, but
// historical data entry means lookups still tolerate hyphenated values.
func NormalizeISBN(isbn string) string {
	return strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
}
