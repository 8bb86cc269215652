package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/database"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing.
const BcryptCost = 10

// Mailer sends the emails the identity flows depend on.
type Mailer interface {
	SendEmailVerification(ctx context.Context, to, username, link string) error
}

type RegisterOptions struct {
	Fullname string
	Email    string
	Username string
	Password string
}

// Service handles authentication operations.
type Service struct {
	db     *bun.DB
	cfg    *config.Config
	mailer Mailer
}

func NewService(db *bun.DB, cfg *config.Config, mailer Mailer) *Service {
	return &Service{db, cfg, mailer}
}

// Register creates a credentials account and emails a verification link.
func (s *Service) Register(ctx context.Context, opts RegisterOptions) (*models.User, error) {
	email := strings.ToLower(opts.Email)
	username := strings.ToLower(opts.Username)

	exists, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("u.email = ? OR u.username = ?", email, username).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errAccountExists()
	}

	hash, err := HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Fullname:     opts.Fullname,
		Email:        email,
		Username:     username,
		PasswordHash: &hash,
		Role:         models.RoleUser,
		LoginType:    models.LoginTypeCredentials,
	}
	token, err := s.setVerificationToken(user, now)
	if err != nil {
		return nil, err
	}

	_, err = s.db.NewInsert().Model(user).Exec(ctx)
	if database.IsUniqueViolation(err, "users.email", "users.username") {
		return nil, errAccountExists()
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	s.sendVerificationEmail(ctx, user, token)

	return user, nil
}

// Login checks credentials given a username or email and issues a new token
// pair.
func (s *Service) Login(ctx context.Context, identifier, password string) (*models.User, *Tokens, error) {
	identifier = strings.ToLower(identifier)

	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.username = ? OR u.email = ?", identifier, identifier).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errcodes.Unauthorized("Account doesn't exist")
	}
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	if user.LoginType != models.LoginTypeCredentials {
		return nil, nil, errLoginType(user.LoginType)
	}

	if user.PasswordHash == nil || !CheckPassword(password, *user.PasswordHash) {
		return nil, nil, errcodes.Unauthorized("Invalid Credentials")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Logout forgets the stored refresh token so it can't be exchanged again.
func (s *Service) Logout(ctx context.Context, userID string) error {
	_, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("refresh_token = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", userID).
		Exec(ctx)
	return errors.WithStack(err)
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// be the one last issued to the user.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.User, *Tokens, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, errcodes.InvalidToken()
	}

	user := &models.User{}
	err = s.db.NewSelect().
		Model(user).
		Where("u.id = ?", claims.UserID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errcodes.InvalidToken()
	}
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, nil, errcodes.Unauthorized("Refresh token is expired or used")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// VerifyEmail marks the account holding token as verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	now := time.Now().UTC()

	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.email_verification_token = ?", hashVerificationToken(token)).
		Where("u.email_verification_expiry > ?", now).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.BadRequest("Token is invalid or expired")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	user.IsEmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExpiry = nil
	user.UpdatedAt = now
	_, err = s.db.NewUpdate().
		Model(user).
		Column("is_email_verified", "email_verification_token", "email_verification_expiry", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// ResendEmailVerification issues a fresh verification token for an
// unverified account.
func (s *Service) ResendEmailVerification(ctx context.Context, userID string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return errcodes.Conflict("Email is already verified")
	}

	now := time.Now().UTC()
	token, err := s.setVerificationToken(user, now)
	if err != nil {
		return err
	}
	user.UpdatedAt = now
	_, err = s.db.NewUpdate().
		Model(user).
		Column("email_verification_token", "email_verification_expiry", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	s.sendVerificationEmail(ctx, user, token)
	return nil
}

// GetUserByID loads the account an access token refers to.
func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFoundMessage("Account doesn't exist")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// issueTokens generates a token pair and stores the refresh token, replacing
// any previous one.
func (s *Service) issueTokens(ctx context.Context, user *models.User) (*Tokens, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	user.RefreshToken = &tokens.RefreshToken
	user.UpdatedAt = time.Now().UTC()
	_, err = s.db.NewUpdate().
		Model(user).
		Column("refresh_token", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return tokens, nil
}

func (s *Service) setVerificationToken(user *models.User, now time.Time) (string, error) {
	token, digest, err := newVerificationToken()
	if err != nil {
		return "", err
	}
	expiry := now.Add(s.cfg.EmailVerificationTokenExpiry)
	user.EmailVerificationToken = &digest
	user.EmailVerificationExpiry = &expiry
	return token, nil
}

// sendVerificationEmail logs delivery failures instead of failing the request.
// The account is already stored and the link can be resent.
func (s *Service) sendVerificationEmail(ctx context.Context, user *models.User, token string) {
	link := strings.TrimRight(s.cfg.AppURL, "/") + "/api/v1/users/verify-email/" + token
	if err := s.mailer.SendEmailVerification(ctx, user.Email, user.Username, link); err != nil {
		logger.FromContext(ctx).Err(err).Error("failed to send verification email", logger.Data{"user_id": user.ID})
	}
}

func errAccountExists() error {
	return errcodes.Conflict("Account with email or username already exists")
}

func errLoginType(loginType string) error {
	lt := strings.ToLower(loginType)
	return errcodes.Unauthorized("You have previously registered using " + lt + ". Please use the " + lt + " login option to access your account.")
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
