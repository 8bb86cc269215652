package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/envelope"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/pkg/errors"
)

type handler struct {
	authService *Service
	cfg         *config.Config
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()

	params := RegisterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Register(ctx, RegisterOptions(params))
	if err != nil {
		return err
	}

	return envelope.Created(c, "Account Registration Successful !! Please verify your email.", user)
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, tokens, err := h.authService.Login(ctx, params.User, params.Password)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, tokens)
	return envelope.OK(c, "User Authenticated Successfully", user)
}

func (h *handler) logout(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := CurrentUser(c)
	if !ok {
		return errcodes.Unauthorized("Unauthorized request")
	}

	if err := h.authService.Logout(ctx, user.ID); err != nil {
		return err
	}

	h.clearTokenCookies(c)
	return envelope.OK(c, "Logout Successful", nil)
}

func (h *handler) refresh(c echo.Context) error {
	ctx := c.Request().Context()

	token := ""
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		c.Set("disallow_empty_body", false)
		params := RefreshPayload{}
		if err := c.Bind(&params); err != nil {
			return errors.WithStack(err)
		}
		token = params.RefreshToken
	}
	if token == "" {
		return errcodes.Unauthorized("Unauthorized request")
	}

	user, tokens, err := h.authService.Refresh(ctx, token)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, tokens)
	return envelope.OK(c, "Access token refreshed", user)
}

func (h *handler) verifyEmail(c echo.Context) error {
	ctx := c.Request().Context()

	token := c.Param("token")
	if token == "" {
		return errcodes.BadRequest("Email verification token is missing")
	}

	user, err := h.authService.VerifyEmail(ctx, token)
	if err != nil {
		return err
	}

	return envelope.OK(c, "Email is verified", map[string]bool{"isEmailVerified": user.IsEmailVerified})
}

func (h *handler) resendEmailVerification(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := CurrentUser(c)
	if !ok {
		return errcodes.Unauthorized("Unauthorized request")
	}

	if err := h.authService.ResendEmailVerification(ctx, user.ID); err != nil {
		return err
	}

	return envelope.OK(c, "Mail has been sent to your mail ID", nil)
}

func (h *handler) beginOAuth(c echo.Context) error {
	provider := c.Param("provider")
	if _, err := goth.GetProvider(provider); err != nil {
		return errcodes.NotFound("Provider")
	}

	req := gothic.GetContextWithProvider(c.Request(), provider)
	gothic.BeginAuthHandler(c.Response(), req)
	return nil
}

func (h *handler) oauthCallback(c echo.Context) error {
	ctx := c.Request().Context()

	provider := c.Param("provider")
	if _, err := goth.GetProvider(provider); err != nil {
		return errcodes.NotFound("Provider")
	}

	req := gothic.GetContextWithProvider(c.Request(), provider)
	identity, err := gothic.CompleteUserAuth(c.Response(), req)
	if err != nil {
		return errcodes.Unauthorized("Authentication with " + provider + " failed")
	}

	user, tokens, err := h.authService.LoginWithProvider(ctx, provider, identity)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, tokens)
	return envelope.OK(c, "User Authenticated Successfully", user)
}
