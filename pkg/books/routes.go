package books

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/objectstore"
	"github.com/uptrace/bun"
)

func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, store objectstore.Store, cfg *config.Config, authMiddleware *auth.Middleware) *Service {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
		store:       store,
		cfg:         cfg,
	}

	authorOnly := authMiddleware.RequireRole(models.RoleAuthor)

	g.GET("", h.list)
	g.POST("", h.create, authMiddleware.Authenticate, authorOnly)

	g.GET("/:id", h.retrieve, authMiddleware.Authenticate)
	g.PUT("/:id", h.update, authMiddleware.Authenticate, authorOnly)
	g.DELETE("/:id", h.delete, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAdmin, models.RoleAuthor))
	g.PATCH("/:id/upload-cover", h.uploadCover, authMiddleware.Authenticate, authorOnly)

	return bookService
}
