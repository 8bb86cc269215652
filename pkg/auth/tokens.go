package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
)

// AccessClaims are carried by the short-lived access token.
type AccessClaims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by the long-lived refresh token.
type RefreshClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Tokens is an access and refresh token pair issued together.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

func registeredClaims(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

func (s *Service) generateTokens(user *models.User) (*Tokens, error) {
	now := time.Now()

	access := AccessClaims{
		UserID:           user.ID,
		Email:            user.Email,
		Username:         user.Username,
		Role:             user.Role,
		RegisteredClaims: registeredClaims(now, s.cfg.AccessTokenExpiry),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString([]byte(s.cfg.AccessTokenSecret))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	refresh := RefreshClaims{
		UserID:           user.ID,
		RegisteredClaims: registeredClaims(now, s.cfg.RefreshTokenExpiry),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString([]byte(s.cfg.RefreshTokenSecret))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Tokens{accessToken, refreshToken}, nil
}

func parseToken(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// ValidateAccessToken verifies the signature and expiry of an access token.
func (s *Service) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseToken(tokenString, s.cfg.AccessTokenSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefreshToken verifies the signature and expiry of a refresh token.
func (s *Service) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parseToken(tokenString, s.cfg.RefreshTokenSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// newVerificationToken returns a random token to email and the digest of it
// to persist.
func newVerificationToken() (token, digest string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", errors.WithStack(err)
	}
	token = hex.EncodeToString(b)
	return token, hashVerificationToken(token), nil
}

func hashVerificationToken(token string) string {
	sum := sha512.Sum512([]byte(token))
	return hex.EncodeToString(sum[:])
}
