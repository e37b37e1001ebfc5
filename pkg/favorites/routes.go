package favorites

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers favorite routes.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	favoriteService := NewService(db)

	h := &handler{favoriteService: favoriteService}

	g.GET("", h.list)
	g.PUT("/:bookId", h.add)
	g.DELETE("/:bookId", h.remove)
}
