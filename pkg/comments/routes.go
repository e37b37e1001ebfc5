package comments

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers comment routes on the books group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	commentService := NewService(db)

	h := &handler{commentService: commentService}

	g.GET("/:bookId/comments", h.list)
	g.POST("/:bookId/comments", h.create)
	g.DELETE("/comments/:id", h.delete)
}
