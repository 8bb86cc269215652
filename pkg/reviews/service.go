package reviews

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

type ListOptions struct {
	Page int
	// MinRating of 0 means no rating filter.
	MinRating int
}

func (s *Service) List(ctx context.Context, bookID string, opts ListOptions) (*pagination.Page[*models.Review], error) {
	if _, err := s.retrieveBook(ctx, bookID); err != nil {
		return nil, err
	}

	return pagination.List[*models.Review](ctx, s.db, opts.Page, "r.created_at", func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("r.book_id = ?", bookID)
		if opts.MinRating > 0 {
			q = q.Where("r.rating >= ?", opts.MinRating)
		}
		return q
	})
}

type CreateOptions struct {
	Rating  int
	Comment string
}

// Create adds user's review of a book. Authors can't review their own books
// and nobody can review the same book twice.
func (s *Service) Create(ctx context.Context, bookID string, user *models.User, opts CreateOptions) (*models.Review, error) {
	book, err := s.retrieveBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	ownBook, err := s.db.NewSelect().
		Model((*models.Author)(nil)).
		Where("a.id = ?", book.AuthorID).
		Where("a.user_id = ?", user.ID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if ownBook {
		return nil, errcodes.BadRequest("You cannot review your own book")
	}

	exists, err := s.db.NewSelect().
		Model((*models.Review)(nil)).
		Where("r.book_id = ?", bookID).
		Where("r.user_id = ?", user.ID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errAlreadyReviewed()
	}

	now := time.Now().UTC()
	review := &models.Review{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		BookID:    bookID,
		UserID:    user.ID,
		Rating:    opts.Rating,
		Comment:   opts.Comment,
	}
	_, err = s.db.NewInsert().Model(review).Exec(ctx)
	if database.IsUniqueViolation(err, "reviews.user_id", "reviews.book_id") {
		return nil, errAlreadyReviewed()
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return review, nil
}

// UpdateOptions holds the fields to change. Nil fields are left alone.
type UpdateOptions struct {
	Rating  *int
	Comment *string
}

// Update changes a review written by userID.
func (s *Service) Update(ctx context.Context, bookID, reviewID, userID string, opts UpdateOptions) (*models.Review, error) {
	review := &models.Review{}
	err := s.db.NewSelect().
		Model(review).
		Where("r.id = ?", reviewID).
		Where("r.book_id = ?", bookID).
		Where("r.user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFoundMessage("Your Review doesn't exist")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	columns := []string{}
	if opts.Rating != nil {
		review.Rating = *opts.Rating
		columns = append(columns, "rating")
	}
	if opts.Comment != nil {
		review.Comment = *opts.Comment
		columns = append(columns, "comment")
	}
	if len(columns) == 0 {
		return review, nil
	}

	review.UpdatedAt = time.Now().UTC()
	columns = append(columns, "updated_at")
	result, err := s.db.NewUpdate().
		Model(review).
		Column(columns...).
		Where("id = ?", reviewID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, errcodes.NotFoundMessage("Your Review doesn't exist")
	}

	return review, nil
}

// Delete removes a review. Users and authors may only remove their own
// reviews.
func (s *Service) Delete(ctx context.Context, bookID, reviewID string, actor *models.User) error {
	review := &models.Review{}
	err := s.db.NewSelect().
		Model(review).
		Where("r.id = ?", reviewID).
		Where("r.book_id = ?", bookID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return errcodes.NotFound("Review")
	}
	if err != nil {
		return errors.WithStack(err)
	}

	if actor.HasRole(models.RoleUser, models.RoleAuthor) && review.UserID != actor.ID {
		return errcodes.Forbidden()
	}

	result, err := s.db.NewDelete().
		Model((*models.Review)(nil)).
		Where("id = ?", reviewID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errcodes.NotFound("Review")
	}
	return nil
}

func (s *Service) retrieveBook(ctx context.Context, id string) (*models.Book, error) {
	book := &models.Book{}
	err := s.db.NewSelect().
		Model(book).
		Where("b.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Book")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return book, nil
}

func errAlreadyReviewed() error {
	return errcodes.BadRequest("You have already reviewed this book")
}
