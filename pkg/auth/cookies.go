package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

func (h *handler) tokenCookie(name, value string, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteNoneMode,
	}
	if maxAge > 0 {
		cookie.MaxAge = int(maxAge.Seconds())
	} else {
		cookie.MaxAge = -1
	}
	return cookie
}

func (h *handler) setTokenCookies(c echo.Context, tokens *Tokens) {
	c.SetCookie(h.tokenCookie(AccessTokenCookie, tokens.AccessToken, h.cfg.AccessTokenExpiry))
	c.SetCookie(h.tokenCookie(RefreshTokenCookie, tokens.RefreshToken, h.cfg.RefreshTokenExpiry))
}

func (h *handler) clearTokenCookies(c echo.Context) {
	c.SetCookie(h.tokenCookie(AccessTokenCookie, "", 0))
	c.SetCookie(h.tokenCookie(RefreshTokenCookie, "", 0))
}
