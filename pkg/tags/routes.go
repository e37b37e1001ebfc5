package tags

import (
	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers tag routes on a pre-configured group.
// Creating, renaming, and deleting tags reshapes the whole catalog, so those
// are staff operations.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware) {
	tagService := NewService(db)

	h := &handler{tagService: tagService, pageSize: cfg.PageSize}

	g.GET("", h.list)
	g.POST("", h.create, authMiddleware.RequireStaff())
	g.POST("/:id", h.update, authMiddleware.RequireStaff())
	g.DELETE("/:id", h.delete, authMiddleware.RequireStaff())
}
