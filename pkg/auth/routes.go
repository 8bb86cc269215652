package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/config"
)

// RegisterRoutesWithGroup registers the identity routes on the /users group.
func RegisterRoutesWithGroup(g *echo.Group, authService *Service, authMiddleware *Middleware, cfg *config.Config) {
	h := &handler{
		authService: authService,
		cfg:         cfg,
	}

	g.POST("", h.register)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout, authMiddleware.Authenticate)
	g.POST("/refresh-token", h.refresh)
	g.GET("/verify-email/:token", h.verifyEmail)
	g.POST("/resend-email-verification", h.resendEmailVerification, authMiddleware.Authenticate)

	g.GET("/auth/:provider", h.beginOAuth)
	g.GET("/auth/:provider/callback", h.oauthCallback)
}
