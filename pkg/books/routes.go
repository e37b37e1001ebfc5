package books

import (
	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/config"
	"github.com/chiyopla/bookspace/pkg/covers"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
// Reading the catalog is open to every signed-in user; changing it is staff
// work.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, store *covers.Store, signer *covers.Signer, authMiddleware *auth.Middleware) *Service {
	bookService := NewService(db, store, signer)

	h := &handler{
		bookService: bookService,
		pageSize:    cfg.PageSize,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/isbn/:isbn", h.retrieveByISBN)
	g.POST("", h.create, authMiddleware.RequireStaff())
	g.POST("/:id", h.update, authMiddleware.RequireStaff())
	g.DELETE("/:id", h.delete, authMiddleware.RequireStaff())
	g.POST("/:id/cover", h.uploadCover, authMiddleware.RequireStaff())

	return bookService
}
