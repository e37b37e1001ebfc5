package inventory

import (
	"github.com/chiyopla/bookspace/pkg/books"
	"github.com/chiyopla/bookspace/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers inventory audit routes. The whole
// surface is staff-only; route-level RequireStaff is applied by the caller's
// group so individual routes stay bare here.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, bookService *books.Service) {
	inventoryService := NewService(db, bookService)

	h := &handler{
		inventoryService: inventoryService,
		pageSize:         cfg.PageSize,
	}

	g.POST("/checks", h.check)
	g.DELETE("/checks", h.clear)
	g.GET("/unchecked", h.unchecked)
	g.GET("/statuses", h.statuses)
}
