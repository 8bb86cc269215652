package authors

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/librisapp/libris/pkg/database"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/pagination"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

type CreateOptions struct {
	Bio         string
	Nationality string
	Genres      []string
}

// Create makes user an author. The author takes the user's name and profile
// picture, and a plain user is promoted to the author role.
func (s *Service) Create(ctx context.Context, user *models.User, opts CreateOptions) (*models.Author, error) {
	now := time.Now().UTC()
	genres := opts.Genres
	if genres == nil {
		genres = []string{}
	}
	author := &models.Author{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
		UserID:         user.ID,
		Name:           user.Fullname,
		Bio:            opts.Bio,
		Nationality:    opts.Nationality,
		Genres:         genres,
		ProfilePicture: user.ProfilePicture,
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Author)(nil)).
			Where("a.user_id = ?", user.ID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errAlreadyAuthor()
		}

		_, err = tx.NewInsert().Model(author).Exec(ctx)
		if database.IsUniqueViolation(err, "authors.user_id") {
			return errAlreadyAuthor()
		}
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("role = ?", models.RoleAuthor).
			Set("updated_at = ?", now).
			Where("id = ?", user.ID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return author, nil
}

type ListOptions struct {
	Page   int
	Genres []string
}

func (s *Service) List(ctx context.Context, opts ListOptions) (*pagination.Page[*models.Author], error) {
	return pagination.List[*models.Author](ctx, s.db, opts.Page, "a.created_at", func(q *bun.SelectQuery) *bun.SelectQuery {
		if len(opts.Genres) > 0 {
			q = q.Where("EXISTS (SELECT 1 FROM json_each(a.genres) WHERE json_each.value IN (?))", bun.In(opts.Genres))
		}
		return q
	})
}

// Retrieve gets an author along with their books, newest first.
func (s *Service) Retrieve(ctx context.Context, id string) (*models.Author, error) {
	author := &models.Author{}
	err := s.db.NewSelect().
		Model(author).
		Relation("Books", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("b.created_at DESC")
		}).
		Where("a.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Author")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if author.Books == nil {
		author.Books = []*models.BookSummary{}
	}
	return author, nil
}

// UpdateOptions holds the fields to change. Nil fields are left alone.
type UpdateOptions struct {
	Bio         *string
	Nationality *string
	Genres      []string
}

// Update changes an author owned by userID.
func (s *Service) Update(ctx context.Context, id, userID string, opts UpdateOptions) (*models.Author, error) {
	author, err := s.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	if author.UserID != userID {
		return nil, errcodes.Forbidden()
	}

	columns := []string{}
	if opts.Bio != nil {
		author.Bio = *opts.Bio
		columns = append(columns, "bio")
	}
	if opts.Nationality != nil {
		author.Nationality = *opts.Nationality
		columns = append(columns, "nationality")
	}
	if opts.Genres != nil {
		author.Genres = opts.Genres
		columns = append(columns, "genres")
	}
	if len(columns) == 0 {
		return nil, errcodes.BadRequest("No valid fields provided for update")
	}

	author.UpdatedAt = time.Now().UTC()
	columns = append(columns, "updated_at")
	result, err := s.db.NewUpdate().
		Model(author).
		Column(columns...).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, errcodes.NotFound("Author")
	}

	return author, nil
}

// Delete removes an author. Only the owning user or an admin may do so.
func (s *Service) Delete(ctx context.Context, id string, actor *models.User) error {
	author := &models.Author{}
	err := s.db.NewSelect().
		Model(author).
		Where("a.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return errcodes.NotFound("Author")
	}
	if err != nil {
		return errors.WithStack(err)
	}
	if author.UserID != actor.ID && !actor.IsAdmin() {
		return errcodes.Forbidden()
	}

	q := s.db.NewDelete().
		Model((*models.Author)(nil)).
		Where("id = ?", id)
	if !actor.IsAdmin() {
		q = q.Where("user_id = ?", actor.ID)
	}
	result, err := q.Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errcodes.NotFound("Author")
	}
	return nil
}

func errAlreadyAuthor() error {
	return errcodes.BadRequest("You are already an author")
}
