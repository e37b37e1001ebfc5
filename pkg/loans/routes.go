package loans

import (
	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/books"
	"github.com/chiyopla/bookspace/pkg/config"
	"github.com/chiyopla/bookspace/pkg/mailer"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers loan routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, mailerService *mailer.Service, authMiddleware *auth.Middleware) *Service {
	loanService := NewService(db, mailerService)

	h := &handler{
		loanService: loanService,
		pageSize:    cfg.PageSize,
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/return", h.returnLoan)
	g.POST("/books/:bookId/return-request", h.requestReturn, authMiddleware.RequireStaff())

	return loanService
}

// RegisterReceptionRoutes registers the front-desk scan routes. The caller's
// group applies the staff gate.
func RegisterReceptionRoutes(g *echo.Group, db *bun.DB, loanService *Service, bookService *books.Service) {
	h := &receptionHandler{reception: NewReception(db, loanService, bookService)}

	g.POST("/loans", h.receptionLoan)
	g.POST("/returns", h.receptionReturn)
}
