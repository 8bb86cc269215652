package auth

import (
	"context"
	"database/sql"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/database"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"github.com/pkg/errors"
)

var usernameCleanRE = regexp.MustCompile(`[^a-z0-9._-]+`)

// SetupProviders registers the OAuth providers that have credentials
// configured and returns their names. The gothic session store holds the
// OAuth state between the redirect and the callback.
func SetupProviders(cfg *config.Config) ([]string, error) {
	callbackURL := func(provider string) string {
		return strings.TrimRight(cfg.AppURL, "/") + "/api/v1/users/auth/" + provider + "/callback"
	}

	var providers []goth.Provider
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers = append(providers, google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, callbackURL(models.LoginTypeGoogle), "email", "profile"))
	}
	if cfg.GithubClientID != "" && cfg.GithubClientSecret != "" {
		providers = append(providers, github.New(cfg.GithubClientID, cfg.GithubClientSecret, callbackURL(models.LoginTypeGithub), "user:email"))
	}
	if len(providers) == 0 {
		return nil, nil
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session_secret is required when an oauth provider is configured")
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(int((10 * time.Minute).Seconds()))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.IsProduction()
	store.Options.SameSite = http.SameSiteLaxMode
	gothic.Store = store

	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return names, nil
}

// LoginWithProvider signs in the account matching an OAuth identity's email,
// creating a verified account on first sign in.
func (s *Service) LoginWithProvider(ctx context.Context, provider string, identity goth.User) (*models.User, *Tokens, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, nil, errcodes.BadRequest("Your " + provider + " account doesn't have a public email address")
	}

	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.email = ?", email).
		Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		user, err = s.createProviderUser(ctx, provider, email, identity)
		if err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, errors.WithStack(err)
	case user.LoginType != provider:
		return nil, nil, errLoginType(user.LoginType)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *Service) createProviderUser(ctx context.Context, provider, email string, identity goth.User) (*models.User, error) {
	base := identity.NickName
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	username, err := s.availableUsername(ctx, base)
	if err != nil {
		return nil, err
	}

	fullname := strings.TrimSpace(identity.Name)
	if fullname == "" {
		fullname = strings.TrimSpace(identity.FirstName + " " + identity.LastName)
	}
	if fullname == "" {
		fullname = username
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:              uuid.NewString(),
		CreatedAt:       now,
		UpdatedAt:       now,
		Fullname:        fullname,
		Email:           email,
		Username:        username,
		Role:            models.RoleUser,
		LoginType:       provider,
		IsEmailVerified: true,
	}
	if identity.AvatarURL != "" {
		user.ProfilePicture = &models.Image{URL: identity.AvatarURL, ResourceType: "image"}
	}

	_, err = s.db.NewInsert().Model(user).Exec(ctx)
	if database.IsUniqueViolation(err, "users.email", "users.username") {
		return nil, errAccountExists()
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// availableUsername derives a username from base, adding a numeric suffix
// until it's free.
func (s *Service) availableUsername(ctx context.Context, base string) (string, error) {
	base = usernameCleanRE.ReplaceAllString(strings.ToLower(base), "")
	if base == "" {
		base = "reader"
	}
	candidate := base
	for i := 1; ; i++ {
		exists, err := s.db.NewSelect().
			Model((*models.User)(nil)).
			Where("u.username = ?", candidate).
			Exists(ctx)
		if err != nil {
			return "", errors.WithStack(err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}
