package authors

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/models"
	"github.com/uptrace/bun"
)

func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	authorService := NewService(db)

	h := &handler{
		authorService: authorService,
	}

	g.Use(authMiddleware.Authenticate)

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.PUT("/:id", h.update, authMiddleware.RequireRole(models.RoleAuthor))
	g.DELETE("/:id", h.delete, authMiddleware.RequireRole(models.RoleAdmin, models.RoleAuthor))

	return authorService
}
