package reviews

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the review routes on a group mounted at
// /books/:id/reviews.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	reviewService := NewService(db)

	h := &handler{
		reviewService: reviewService,
	}

	g.Use(authMiddleware.Authenticate)

	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:reviewId", h.update)
	g.DELETE("/:reviewId", h.delete)

	return reviewService
}
