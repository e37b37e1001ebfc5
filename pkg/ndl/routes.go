package ndl

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers bibliographic lookup routes. The caller's
// group decides who may reach them.
func RegisterRoutesWithGroup(g *echo.Group, client *Client) {
	h := &handler{client: client}

	g.GET("/lookup", h.lookup)
	g.GET("/thumbnail/:isbn", h.thumbnail)
}
