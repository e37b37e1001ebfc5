package users

import (
	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/config"
	"github.com/chiyopla/bookspace/pkg/loans"
	"github.com/chiyopla/bookspace/pkg/mailer"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the directory, signup, and account routes. Signup
// and password reset live under /auth because they run unauthenticated.
func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, mailerService *mailer.Service, loanService *loans.Service, authMiddleware *auth.Middleware) *Service {
	svc := NewService(db, mailerService)
	h := &handler{userService: svc, loanService: loanService, pageSize: cfg.PageSize}

	e.POST("/auth/register", h.register)
	e.POST("/auth/verify-email", h.verifyEmail)
	e.POST("/auth/password-reset/request", h.requestPasswordReset)
	e.POST("/auth/password-reset/confirm", h.confirmPasswordReset)

	e.POST("/account/display-name", h.updateDisplayName, authMiddleware.Authenticate)

	g := e.Group("/users", authMiddleware.Authenticate, authMiddleware.RequireStaff())
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create)
	g.POST("/:id", h.update)
	g.POST("/:id/return-request", h.requestReturn)

	return svc
}
