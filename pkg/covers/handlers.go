package covers

import (
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	store  *Store
	signer *Signer
}

// serve returns the cover image for a signed URL. Anything wrong with the
// signature or expiry looks like a missing cover, not a 403, so signed URLs
// don't leak which object names exist.
func (h *handler) serve(c echo.Context) error {
	name := c.Param("name")
	exp := c.QueryParam("exp")
	sig := c.QueryParam("sig")

	if !h.signer.Verify(name, exp, sig) {
		return errcodes.NotFound("Cover")
	}

	path, err := h.store.Path(name)
	if err != nil {
		return errcodes.NotFound("Cover")
	}

	return errors.WithStack(c.File(path))
}
