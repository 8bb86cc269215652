package loans

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
	db  *bun.DB
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db: db,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// CreateLoan opens a loan of bookIDs for borrowerID. A borrower can only have
// one pending loan at a time, and every book has to exist.
func (svc *Service) CreateLoan(ctx context.Context, borrowerID string, bookIDs []string) (*models.Loan, error) {
	now := svc.now()
	loan := &models.Loan{
		ID:                 uuid.NewString(),
		CreatedAt:          now,
		UpdatedAt:          now,
		BorrowerID:         borrowerID,
		BookIDs:            bookIDs,
		LoanDate:           now,
		ExpectedReturnDate: now.Add(models.LoanPeriod),
		Status:             models.LoanStatusPending,
	}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		pending, err := tx.NewSelect().
			Model((*models.Loan)(nil)).
			Where("l.borrower_id = ?", borrowerID).
			Where("l.status = ?", models.LoanStatusPending).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if pending {
			return errPendingLoan()
		}

		unique := uniqueIDs(bookIDs)
		found, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("b.id IN (?)", bun.In(unique)).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if found != len(unique) {
			return errcodes.NotFound("Book")
		}

		_, err = tx.NewInsert().Model(loan).Exec(ctx)
		if database.IsUniqueViolation(err, "loans.borrower_id") {
			return errPendingLoan()
		}
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

type ListLoansOptions struct {
	Page int
	// Status is ignored unless it's a known loan status.
	Status string
}

func (svc *Service) ListLoans(ctx context.Context, opts ListLoansOptions) (*pagination.Page[*models.Loan], error) {
	return pagination.List[*models.Loan](ctx, svc.db, opts.Page, "l.created_at", func(q *bun.SelectQuery) *bun.SelectQuery {
		if models.IsValidLoanStatus(opts.Status) {
			q = q.Where("l.status = ?", opts.Status)
		}
		return q
	})
}

func (svc *Service) RetrieveLoan(ctx context.Context, id string) (*models.Loan, error) {
	loan := &models.Loan{}
	err := svc.db.NewSelect().
		Model(loan).
		Where("l.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Loan")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return loan, nil
}

// ResolveLoan closes a pending loan as returned, or late when it's past its
// expected return date.
func (svc *Service) ResolveLoan(ctx context.Context, id string) (*models.Loan, error) {
	loan, err := svc.RetrieveLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPending {
		return nil, errAlreadyCleared()
	}

	now := svc.now()
	loan.Resolve(now)
	loan.UpdatedAt = now

	result, err := svc.db.NewUpdate().
		Model(loan).
		Column("status", "return_date", "updated_at").
		Where("id = ?", id).
		Where("status = ?", models.LoanStatusPending).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, errAlreadyCleared()
	}

	return loan, nil
}

// ForceReturnLoan marks a loan returned whatever state it's in.
func (svc *Service) ForceReturnLoan(ctx context.Context, id string) (*models.Loan, error) {
	loan, err := svc.RetrieveLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	now := svc.now()
	loan.ForceReturn(now)
	loan.UpdatedAt = now

	result, err := svc.db.NewUpdate().
		Model(loan).
		Column("status", "return_date", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, errcodes.NotFound("Loan")
	}

	return loan, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func errPendingLoan() error {
	return errcodes.BadRequest("You already have a pending loan")
}

func errAlreadyCleared() error {
	return errcodes.BadRequest("Loan is already cleared")
}
