package server

import (
	"fmt"
	"net/http"
	"time"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/authors"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/librisapp/libris/pkg/books"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/envelope"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/loans"
	"github.com/librisapp/libris/pkg/objectstore"
	"github.com/librisapp/libris/pkg/reviews"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/librisapp/libris/pkg/users"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

// Dependencies are the collaborators the routes need besides the database.
type Dependencies struct {
	Store  objectstore.Store
	Mailer auth.Mailer
}

func New(cfg *config.Config, db *bun.DB, deps Dependencies) (*http.Server, error) {
	e, err := newEcho(cfg, db, deps)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, deps Dependencies) (*echo.Echo, error) {
	echo.NotFoundHandler = notFoundHandler

	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	// Repanic hands panics back to the recovery middleware once they're
	// reported.
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	health.RegisterRoutes(e)

	e.GET("/", welcome)

	v1 := e.Group("/api/v1")
	v1.GET("/healthcheck", healthcheck)

	authService := auth.NewService(db, cfg, deps.Mailer)
	authMiddleware := auth.NewMiddleware(authService)

	usersGroup := v1.Group("/users")
	auth.RegisterRoutesWithGroup(usersGroup, authService, authMiddleware, cfg)
	users.RegisterRoutesWithGroup(usersGroup, db, deps.Store, cfg, authMiddleware)

	authors.RegisterRoutesWithGroup(v1.Group("/authors"), db, authMiddleware)
	books.RegisterRoutesWithGroup(v1.Group("/books"), db, deps.Store, cfg, authMiddleware)
	reviews.RegisterRoutesWithGroup(v1.Group("/books/:id/reviews"), db, authMiddleware)
	loans.RegisterRoutesWithGroup(v1.Group("/loans"), db, authMiddleware)

	if cfg.Environment == config.EnvironmentTest {
		testutils.RegisterRoutes(e, db)
	}

	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func welcome(c echo.Context) error {
	return envelope.OK(c, "Welcome to Library Management System API!!", nil)
}

func healthcheck(c echo.Context) error {
	return envelope.OK(c, "Server is running", nil)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
