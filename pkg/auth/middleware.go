package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
)

const contextKeyUser = "user"

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{authService}
}

// Authenticate reads the access token from the accessToken cookie or a
// bearer Authorization header and loads the user it was issued to.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		token := tokenFromRequest(c)
		if token == "" {
			return errcodes.Unauthorized("Unauthorized request")
		}

		claims, err := m.authService.ValidateAccessToken(token)
		if err != nil {
			return errcodes.InvalidToken()
		}

		user, err := m.authService.GetUserByID(ctx, claims.UserID)
		if err != nil {
			return err
		}

		c.Set(contextKeyUser, user)

		return next(c)
	}
}

// RequireRole returns middleware that only lets users holding one of roles
// through. Must be used after Authenticate.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return errcodes.Unauthorized("Unauthorized request")
			}
			if !user.HasRole(roles...) {
				return errcodes.Forbidden()
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by Authenticate.
func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(contextKeyUser).(*models.User)
	return user, ok && user != nil
}

// SetCurrentUser attaches user to the request, as Authenticate does.
func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(contextKeyUser, user)
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
