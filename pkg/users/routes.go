package users

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/objectstore"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the user management routes on the
// /users group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, store objectstore.Store, cfg *config.Config, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
		store:       store,
		cfg:         cfg,
	}

	g.GET("", h.list)
	g.PATCH("/upload-profile-picture", h.uploadProfilePicture, authMiddleware.Authenticate)

	g.GET("/:id", h.retrieve, authMiddleware.Authenticate)
	g.PUT("/:id", h.update, authMiddleware.Authenticate)
	g.PATCH("/:id", h.assignRole, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAdmin))
	g.DELETE("/:id", h.delete, authMiddleware.Authenticate)

	return userService
}
