package loans

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/models"
	"github.com/uptrace/bun"
)

func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	loanService := NewService(db)

	h := &handler{
		loanService: loanService,
	}

	adminOnly := authMiddleware.RequireRole(models.RoleAdmin)

	g.Use(authMiddleware.Authenticate)

	g.GET("", h.list, adminOnly)
	g.POST("", h.create)
	g.PUT("/:id", h.resolve, adminOnly)
	g.DELETE("/:id", h.forceReturn, adminOnly)

	return loanService
}
