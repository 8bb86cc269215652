package books

import (
	"context"
	"database/sql"
	"strings"
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

type CreateBookOptions struct {
	ISBN                 string
	Title                string
	Description          string
	Categories           []string
	Edition              string
	Price                float64
	AvailableStock       int
	PublishedDate        time.Time
	Pages                int
	AvailableInLanguages []string
}

// CreateBook adds a book published by the author record of userID.
func (svc *Service) CreateBook(ctx context.Context, userID string, opts CreateBookOptions) (*models.Book, error) {
	exists, err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("b.isbn = ?", opts.ISBN).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errISBNExists()
	}

	author, err := svc.authorForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	languages := opts.AvailableInLanguages
	if len(languages) == 0 {
		languages = []string{models.LanguageEnglish}
	}

	now := time.Now().UTC()
	book := &models.Book{
		ID:                   uuid.NewString(),
		CreatedAt:            now,
		UpdatedAt:            now,
		ISBN:                 opts.ISBN,
		Title:                opts.Title,
		AuthorID:             author.ID,
		Description:          opts.Description,
		Categories:           opts.Categories,
		Edition:              opts.Edition,
		Price:                opts.Price,
		AvailableStock:       opts.AvailableStock,
		PublishedDate:        opts.PublishedDate.UTC(),
		Pages:                opts.Pages,
		AvailableInLanguages: languages,
	}

	_, err = svc.db.NewInsert().Model(book).Exec(ctx)
	if database.IsUniqueViolation(err, "books.isbn") {
		return nil, errISBNExists()
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return book, nil
}

type ListBooksOptions struct {
	Page       int
	Title      string
	Categories []string
	MinPrice   *float64
	MaxPrice   *float64
	Languages  []string
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) (*pagination.Page[*models.Book], error) {
	page, err := pagination.List[*models.Book](ctx, svc.db, opts.Page, "b.created_at", func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Relation("Author")

		if title := strings.TrimSpace(opts.Title); title != "" {
			q = q.Where("b.title LIKE ? ESCAPE ?", "%"+pagination.EscapeLike(title)+"%", `\`)
		}
		if len(opts.Categories) > 0 {
			q = q.Where("EXISTS (SELECT 1 FROM json_each(b.categories) WHERE json_each.value IN (?))", bun.In(opts.Categories))
		}
		if opts.MinPrice != nil {
			q = q.Where("b.price >= ?", *opts.MinPrice)
		}
		if opts.MaxPrice != nil {
			q = q.Where("b.price <= ?", *opts.MaxPrice)
		}
		if len(opts.Languages) > 0 {
			languages := make([]string, len(opts.Languages))
			for i, l := range opts.Languages {
				languages[i] = strings.ToLower(l)
			}
			q = q.Where("EXISTS (SELECT 1 FROM json_each(b.available_in_languages) WHERE json_each.value IN (?))", bun.In(languages))
		}
		return q
	})
	if err != nil {
		return nil, err
	}
	for _, book := range page.Data {
		dropMissingAuthor(book)
	}
	return page, nil
}

// RetrieveBook gets a book with the public fields of its author.
func (svc *Service) RetrieveBook(ctx context.Context, id string) (*models.Book, error) {
	book := &models.Book{}
	err := svc.db.NewSelect().
		Model(book).
		Relation("Author").
		Where("b.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Book")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	dropMissingAuthor(book)
	return book, nil
}

// RetrieveOwnedBook gets a book the author record of userID publishes.
func (svc *Service) RetrieveOwnedBook(ctx context.Context, id, userID string) (*models.Book, error) {
	book, err := svc.RetrieveBook(ctx, id)
	if err != nil {
		return nil, err
	}
	author, err := svc.authorForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if book.AuthorID != author.ID {
		return nil, errcodes.Forbidden()
	}
	return book, nil
}

// UpdateBookOptions holds the fields to change. Nil fields are left alone.
type UpdateBookOptions struct {
	ISBN                 *string
	Title                *string
	Description          *string
	Categories           []string
	Edition              *string
	Price                *float64
	AvailableStock       *int
	PublishedDate        *time.Time
	Pages                *int
	AvailableInLanguages []string
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) (*models.Book, error) {
	columns := []string{}
	if opts.ISBN != nil && *opts.ISBN != book.ISBN {
		taken, err := svc.db.NewSelect().
			Model((*models.Book)(nil)).
			Where("b.isbn = ?", *opts.ISBN).
			Where("b.id != ?", book.ID).
			Exists(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if taken {
			return nil, errISBNExists()
		}
		book.ISBN = *opts.ISBN
		columns = append(columns, "isbn")
	}
	if opts.Title != nil {
		book.Title = *opts.Title
		columns = append(columns, "title")
	}
	if opts.Description != nil {
		book.Description = *opts.Description
		columns = append(columns, "description")
	}
	if opts.Categories != nil {
		book.Categories = opts.Categories
		columns = append(columns, "categories")
	}
	if opts.Edition != nil {
		book.Edition = *opts.Edition
		columns = append(columns, "edition")
	}
	if opts.Price != nil {
		book.Price = *opts.Price
		columns = append(columns, "price")
	}
	if opts.AvailableStock != nil {
		book.AvailableStock = *opts.AvailableStock
		columns = append(columns, "available_stock")
	}
	if opts.PublishedDate != nil {
		book.PublishedDate = opts.PublishedDate.UTC()
		columns = append(columns, "published_date")
	}
	if opts.Pages != nil {
		book.Pages = *opts.Pages
		columns = append(columns, "pages")
	}
	if opts.AvailableInLanguages != nil {
		book.AvailableInLanguages = opts.AvailableInLanguages
		columns = append(columns, "available_in_languages")
	}
	if len(columns) == 0 {
		return book, nil
	}

	book.UpdatedAt = time.Now().UTC()
	columns = append(columns, "updated_at")
	if err := svc.updateColumns(ctx, book, columns...); err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateCoverImage stores img as the cover of book.
func (svc *Service) UpdateCoverImage(ctx context.Context, book *models.Book, img *models.Image) (*models.Book, error) {
	book.CoverImage = img
	book.UpdatedAt = time.Now().UTC()
	if err := svc.updateColumns(ctx, book, "cover_image", "updated_at"); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book. Admins may remove any book, everyone else only
// the books they publish.
func (svc *Service) DeleteBook(ctx context.Context, id string, actor *models.User) error {
	q := svc.db.NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id)

	if actor.IsAdmin() {
		if _, err := svc.RetrieveBook(ctx, id); err != nil {
			return err
		}
	} else {
		book, err := svc.RetrieveOwnedBook(ctx, id, actor.ID)
		if err != nil {
			return err
		}
		q = q.Where("author_id = ?", book.AuthorID)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

// updateColumns writes columns of book as long as it still belongs to the
// same author.
func (svc *Service) updateColumns(ctx context.Context, book *models.Book, columns ...string) error {
	result, err := svc.db.NewUpdate().
		Model(book).
		Column(columns...).
		Where("id = ?", book.ID).
		Where("author_id = ?", book.AuthorID).
		Exec(ctx)
	if database.IsUniqueViolation(err, "books.isbn") {
		return errISBNExists()
	}
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

func (svc *Service) authorForUser(ctx context.Context, userID string) (*models.Author, error) {
	author := &models.Author{}
	err := svc.db.NewSelect().
		Model(author).
		Where("a.user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFoundMessage("Your Author account doesn't exist. Please create an Author account first.")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return author, nil
}

// dropMissingAuthor clears the joined author when the author row is gone.
func dropMissingAuthor(book *models.Book) {
	if book.Author != nil && book.Author.ID == "" {
		book.Author = nil
	}
}

func errISBNExists() error {
	return errcodes.Conflict("A book with this ISBN already exists")
}
