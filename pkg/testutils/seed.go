package testutils

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/database"
	"github.com/librisapp/libris/pkg/migrations"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword satisfies the password rules and is the password of every
// seeded user unless another is given.
const DefaultPassword = "Passw0rd!"

// NewDB opens an in-memory database with every migration applied.
func NewDB(ctx context.Context) (*bun.DB, error) {
	db, err := database.New(config.NewForTest())
	if err != nil {
		return nil, err
	}
	if _, err := migrations.BringUpToDate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type UserOptions struct {
	Fullname  string
	Email     string
	Username  string
	Password  string
	Role      string
	LoginType string
	Verified  bool
}

func CreateUser(ctx context.Context, db bun.IDB, opts UserOptions) (*models.User, error) {
	suffix := uuid.NewString()[:8]
	if opts.Username == "" {
		opts.Username = "reader" + suffix
	}
	if opts.Email == "" {
		opts.Email = opts.Username + "@example.com"
	}
	if opts.Fullname == "" {
		opts.Fullname = "Test Reader"
	}
	if opts.Role == "" {
		opts.Role = models.RoleUser
	}
	if opts.LoginType == "" {
		opts.LoginType = models.LoginTypeCredentials
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:              uuid.NewString(),
		CreatedAt:       now,
		UpdatedAt:       now,
		Fullname:        opts.Fullname,
		Email:           opts.Email,
		Username:        opts.Username,
		Role:            opts.Role,
		LoginType:       opts.LoginType,
		IsEmailVerified: opts.Verified,
	}
	if opts.LoginType == models.LoginTypeCredentials {
		if opts.Password == "" {
			opts.Password = DefaultPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.MinCost)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		h := string(hash)
		user.PasswordHash = &h
	}

	if _, err := db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

type AuthorOptions struct {
	Name        string
	Bio         string
	Nationality string
	Genres      []string
	CreatedAt   time.Time
}

// CreateAuthor creates the author record of user and promotes a plain user to
// the author role.
func CreateAuthor(ctx context.Context, db bun.IDB, user *models.User, opts AuthorOptions) (*models.Author, error) {
	if opts.Name == "" {
		opts.Name = user.Fullname
	}
	if opts.Bio == "" {
		opts.Bio = "Writes books."
	}
	if opts.Nationality == "" {
		opts.Nationality = "Kenyan"
	}
	if opts.Genres == nil {
		opts.Genres = []string{"fiction"}
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now().UTC()
	}

	author := &models.Author{
		ID:             uuid.NewString(),
		CreatedAt:      opts.CreatedAt,
		UpdatedAt:      opts.CreatedAt,
		UserID:         user.ID,
		Name:           opts.Name,
		Bio:            opts.Bio,
		Nationality:    opts.Nationality,
		Genres:         opts.Genres,
		ProfilePicture: user.ProfilePicture,
	}
	if _, err := db.NewInsert().Model(author).Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	if user.Role == models.RoleUser {
		user.Role = models.RoleAuthor
		_, err := db.NewUpdate().Model(user).Column("role").WherePK().Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return author, nil
}

type BookOptions struct {
	ISBN           string
	Title          string
	Categories     []string
	Price          float64
	AvailableStock int
	Languages      []string
	CoverImage     *models.Image
	CreatedAt      time.Time
}

func CreateBook(ctx context.Context, db bun.IDB, author *models.Author, opts BookOptions) (*models.Book, error) {
	if opts.ISBN == "" {
		opts.ISBN = "978-" + uuid.NewString()[:10]
	}
	if opts.Title == "" {
		opts.Title = "A Test Book"
	}
	if opts.Categories == nil {
		opts.Categories = []string{"fiction"}
	}
	if opts.Languages == nil {
		opts.Languages = []string{models.LanguageEnglish}
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now().UTC()
	}

	book := &models.Book{
		ID:                   uuid.NewString(),
		CreatedAt:            opts.CreatedAt,
		UpdatedAt:            opts.CreatedAt,
		ISBN:                 opts.ISBN,
		Title:                opts.Title,
		AuthorID:             author.ID,
		Description:          "A book used by the tests.",
		Categories:           opts.Categories,
		Edition:              "1st",
		CoverImage:           opts.CoverImage,
		Price:                opts.Price,
		AvailableStock:       opts.AvailableStock,
		PublishedDate:        time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Pages:                100,
		AvailableInLanguages: opts.Languages,
	}
	if _, err := db.NewInsert().Model(book).Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return book, nil
}

type LoanOptions struct {
	Status             string
	ExpectedReturnDate time.Time
	CreatedAt          time.Time
}

func CreateLoan(ctx context.Context, db bun.IDB, borrower *models.User, bookIDs []string, opts LoanOptions) (*models.Loan, error) {
	if opts.Status == "" {
		opts.Status = models.LoanStatusPending
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now().UTC()
	}
	if opts.ExpectedReturnDate.IsZero() {
		opts.ExpectedReturnDate = opts.CreatedAt.Add(models.LoanPeriod)
	}

	loan := &models.Loan{
		ID:                 uuid.NewString(),
		CreatedAt:          opts.CreatedAt,
		UpdatedAt:          opts.CreatedAt,
		BorrowerID:         borrower.ID,
		BookIDs:            bookIDs,
		LoanDate:           opts.CreatedAt,
		ExpectedReturnDate: opts.ExpectedReturnDate,
		Status:             opts.Status,
	}
	if opts.Status != models.LoanStatusPending {
		returned := opts.CreatedAt
		loan.ReturnDate = &returned
	}
	if _, err := db.NewInsert().Model(loan).Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return loan, nil
}

type ReviewOptions struct {
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func CreateReview(ctx context.Context, db bun.IDB, user *models.User, book *models.Book, opts ReviewOptions) (*models.Review, error) {
	if opts.Rating == 0 {
		opts.Rating = 4
	}
	if opts.Comment == "" {
		opts.Comment = "Enjoyed it."
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now().UTC()
	}

	review := &models.Review{
		ID:        uuid.NewString(),
		CreatedAt: opts.CreatedAt,
		UpdatedAt: opts.CreatedAt,
		BookID:    book.ID,
		UserID:    user.ID,
		Rating:    opts.Rating,
		Comment:   opts.Comment,
	}
	if _, err := db.NewInsert().Model(review).Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return review, nil
}
