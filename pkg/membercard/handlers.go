package membercard

import (
	"net/http"

	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db *bun.DB
}

// card returns the current user's QR payload.
func (h *handler) card(c echo.Context) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	data, err := Build(user)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		QRData string `json:"qr_data"`
	}{data}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// resolve turns a scanned payload into a member record for the front desk.
func (h *handler) resolve(c echo.Context) error {
	ctx := c.Request().Context()

	params := ResolvePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := Resolve(ctx, h.db, params.QRData)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}
