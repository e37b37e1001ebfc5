// Package server wires the echo application together: middleware, binder,
// error handling, and every feature package's routes.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/binder"
	"github.com/chiyopla/bookspace/pkg/books"
	"github.com/chiyopla/bookspace/pkg/comments"
	"github.com/chiyopla/bookspace/pkg/config"
	"github.com/chiyopla/bookspace/pkg/covers"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/favorites"
	"github.com/chiyopla/bookspace/pkg/inventory"
	"github.com/chiyopla/bookspace/pkg/loans"
	"github.com/chiyopla/bookspace/pkg/mailer"
	"github.com/chiyopla/bookspace/pkg/membercard"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/ndl"
	"github.com/chiyopla/bookspace/pkg/tags"
	"github.com/chiyopla/bookspace/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	store, err := covers.NewStore(cfg.CoverDir)
	if err != nil {
		return nil, err
	}
	signer := covers.NewSigner(cfg.JWTSecret)

	var sink mailer.Sink = mailer.NoopSink{}
	if cfg.ResendAPIKey != "" {
		sink = mailer.NewResendSink(cfg.ResendAPIKey, cfg.MailFrom)
	}
	mailerService := mailer.NewService(db, sink, cfg.BaseURL)

	authService := auth.RegisterRoutes(e, db, cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(authService)

	covers.RegisterRoutes(e, store, signer)

	// The catalog is browsable without a session; write routes apply their
	// own staff gate and need the optional authentication to see the user.
	booksGroup := e.Group("/books")
	booksGroup.Use(authMiddleware.AuthenticateOptional)
	bookService := books.RegisterRoutesWithGroup(booksGroup, db, cfg, store, signer, authMiddleware)
	comments.RegisterRoutesWithGroup(booksGroup, db)

	tagsGroup := e.Group("/tags")
	tagsGroup.Use(authMiddleware.AuthenticateOptional)
	tags.RegisterRoutesWithGroup(tagsGroup, db, cfg, authMiddleware)

	loansGroup := e.Group("/loans")
	loansGroup.Use(authMiddleware.Authenticate)
	loanService := loans.RegisterRoutesWithGroup(loansGroup, db, cfg, mailerService, authMiddleware)

	receptionGroup := e.Group("/reception")
	receptionGroup.Use(authMiddleware.Authenticate)
	receptionGroup.Use(authMiddleware.RequireStaff())
	loans.RegisterReceptionRoutes(receptionGroup, db, loanService, bookService)

	inventoryGroup := e.Group("/inventory")
	inventoryGroup.Use(authMiddleware.Authenticate)
	inventoryGroup.Use(authMiddleware.RequireRole(models.RoleLibrarian, models.RoleAdmin))
	inventory.RegisterRoutesWithGroup(inventoryGroup, db, cfg, bookService)

	favoritesGroup := e.Group("/favorites")
	favoritesGroup.Use(authMiddleware.Authenticate)
	favorites.RegisterRoutesWithGroup(favoritesGroup, db)

	membercardGroup := e.Group("/membercard")
	membercardGroup.Use(authMiddleware.Authenticate)
	membercard.RegisterRoutesWithGroup(membercardGroup, db, authMiddleware)

	ndlGroup := e.Group("/ndl")
	ndlGroup.Use(authMiddleware.Authenticate)
	ndl.RegisterRoutesWithGroup(ndlGroup, ndl.NewClient())

	users.RegisterRoutes(e, db, cfg, mailerService, loanService, authMiddleware)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
