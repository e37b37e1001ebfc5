// Package membercard builds and parses the QR payload printed on membership
// cards. The payload is a small JSON document with string fields so any
// scanner app can display it without knowing our ID types.
package membercard

import (
	"context"
	"strconv"
	"strings"

	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

// Payload is the JSON document encoded in the QR code.
type Payload struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Build encodes the QR payload for a user. The name is the display name when
// one is set, matching what the front desk sees on the card.
func Build(user *models.User) (string, error) {
	data, err := json.Marshal(Payload{
		UserID: strconv.Itoa(user.ID),
		Name:   user.DisplayNameOrName(),
	})
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(data), nil
}

// Parse decodes a scanned payload and returns the member's user ID. Both the
// full JSON document and a bare numeric ID are accepted, because some
// handheld scanners strip everything but digits.
func Parse(data string) (int, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return 0, errcodes.ValidationError("qr payload is empty")
	}

	if !strings.HasPrefix(data, "{") {
		id, err := strconv.Atoi(data)
		if err != nil || id < 1 {
			return 0, errcodes.ValidationError("qr payload is not a member card")
		}
		return id, nil
	}

	payload := Payload{}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return 0, errcodes.ValidationError("qr payload is not a member card")
	}

	id, err := strconv.Atoi(payload.UserID)
	if err != nil || id < 1 {
		return 0, errcodes.ValidationError("qr payload is not a member card")
	}

	return id, nil
}

// Resolve parses a scanned payload and loads the member it names. Disabled
// members resolve to not found so a revoked card stops working at the desk.
func Resolve(ctx context.Context, db *bun.DB, data string) (*models.User, error) {
	id, err := Parse(data)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	err = db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Where("u.disabled = ?", false).
		Scan(ctx)
	if err != nil {
		return nil, errcodes.NotFound("Member")
	}

	return user, nil
}
