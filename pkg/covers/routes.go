package covers

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the public cover-serving route. Access control is
// the signature itself, so no auth middleware is attached.
func RegisterRoutes(e *echo.Echo, store *Store, signer *Signer) {
	h := &handler{store: store, signer: signer}

	e.GET("/covers/:name", h.serve)
}
