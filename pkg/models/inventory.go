package models

import (
	"time"

	"github.com/uptrace/bun"
)

// InventoryCheck records that a staff member confirmed physical presence of a
// book during the current audit cycle. At most one row per book; re-checking
// just moves the timestamp forward.
type InventoryCheck struct {
	bun.BaseModel `bun:"table:inventory_checks,alias:ic"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	CheckedAt time.Time `json:"checked_at"`
}

// InventoryClearEvent is an append-only record of audit history wipes.
type InventoryClearEvent struct {
	bun.BaseModel `bun:"table:inventory_clear_events,alias:ice"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	ClearedAt time.Time `json:"cleared_at"`
}
