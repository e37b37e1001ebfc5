package membercard

import (
	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers member card routes.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{db: db}

	g.GET("", h.card)
	g.POST("/resolve", h.resolve, authMiddleware.RequireStaff())
}
