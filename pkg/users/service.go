package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/database"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles user operations.
type Service struct {
	db *bun.DB
}

// NewService creates a new users service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// List returns every user, newest first.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0)
	err := s.db.NewSelect().
		Model(&users).
		Order("u.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return users, nil
}

// Retrieve gets a user by ID.
func (s *Service) Retrieve(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("User")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// UpdateOptions holds the fields to change. Nil fields are left alone.
type UpdateOptions struct {
	Fullname *string
	Email    *string
	Username *string
}

func (s *Service) Update(ctx context.Context, id string, opts UpdateOptions) (*models.User, error) {
	user, err := s.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := []string{}
	if opts.Fullname != nil {
		user.Fullname = *opts.Fullname
		columns = append(columns, "fullname")
	}
	if opts.Email != nil {
		user.Email = strings.ToLower(*opts.Email)
		columns = append(columns, "email")
	}
	if opts.Username != nil {
		user.Username = strings.ToLower(*opts.Username)
		columns = append(columns, "username")
	}
	if len(columns) == 0 {
		return user, nil
	}

	if opts.Email != nil || opts.Username != nil {
		taken, err := s.db.NewSelect().
			Model((*models.User)(nil)).
			Where("u.id != ?", id).
			WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("u.email = ?", user.Email).WhereOr("u.username = ?", user.Username)
			}).
			Exists(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if taken {
			return nil, errAccountExists()
		}
	}

	user.UpdatedAt = time.Now().UTC()
	columns = append(columns, "updated_at")
	result, err := s.db.NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if database.IsUniqueViolation(err, "users.email", "users.username") {
		return nil, errAccountExists()
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, errcodes.NotFound("User")
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.db.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

// UpdateProfilePicture stores img on the user and on their author record, if
// they have one.
func (s *Service) UpdateProfilePicture(ctx context.Context, userID string, img *models.Image) (*models.User, error) {
	now := time.Now().UTC()

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("profile_picture = ?", img).
			Set("updated_at = ?", now).
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewUpdate().
			Model((*models.Author)(nil)).
			Set("profile_picture = ?", img).
			Set("updated_at = ?", now).
			Where("user_id = ?", userID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return s.Retrieve(ctx, userID)
}

// AssignRole changes the role of another user.
func (s *Service) AssignRole(ctx context.Context, actorID, id, role string) error {
	if actorID == id {
		return errcodes.BadRequest("You can't assign your own role")
	}

	result, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("role = ?", role).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errcodes.NotFoundMessage("Account doesn't exist")
	}
	return nil
}

func errAccountExists() error {
	return errcodes.Conflict("Account with email or username already exists")
}

// EnsureAdminOptions describes the admin account to bootstrap.
type EnsureAdminOptions struct {
	Fullname string
	Email    string
	Username string
	Password string
}

// EnsureAdmin promotes the account matching the email or username to admin,
// creating a verified credentials account when none exists. The returned bool
// reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, opts EnsureAdminOptions) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(opts.Email))
	username := strings.ToLower(strings.TrimSpace(opts.Username))
	if email == "" || username == "" {
		return nil, false, errcodes.BadRequest("Email and username are required")
	}

	user := &models.User{}
	created := false
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(user).
			Where("u.email = ? OR u.username = ?", email, username).
			Limit(1).
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return errors.WithStack(err)
		}

		now := time.Now().UTC()
		if err == nil {
			user.Role = models.RoleAdmin
			user.UpdatedAt = now
			_, err = tx.NewUpdate().
				Model(user).
				Column("role", "updated_at").
				WherePK().
				Exec(ctx)
			return errors.WithStack(err)
		}

		if len(opts.Password) < 8 {
			return errcodes.BadRequest("Password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(opts.Password)
		if err != nil {
			return err
		}
		*user = models.User{
			ID:              uuid.NewString(),
			CreatedAt:       now,
			UpdatedAt:       now,
			Fullname:        opts.Fullname,
			Email:           email,
			Username:        username,
			PasswordHash:    &hash,
			Role:            models.RoleAdmin,
			LoginType:       models.LoginTypeCredentials,
			IsEmailVerified: true,
		}
		_, err = tx.NewInsert().Model(user).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}
