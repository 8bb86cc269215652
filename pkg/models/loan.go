package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	LoanStatusPending  = "pending"
	LoanStatusReturned = "returned"
	LoanStatusLate     = "late"
)

var LoanStatuses = []string{LoanStatusPending, LoanStatusReturned, LoanStatusLate}

// LoanPeriod is how long a borrower has before a loan counts as late.
const LoanPeriod = 7 * 24 * time.Hour

func IsValidLoanStatus(status string) bool {
	return contains(LoanStatuses, status)
}

type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:l"`

	ID                 string     `bun:",pk" json:"id"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	BorrowerID         string     `json:"borrowerId"`
	BookIDs            []string   `bun:"book_ids" json:"bookIds"`
	LoanDate           time.Time  `json:"loanDate"`
	ExpectedReturnDate time.Time  `json:"expectedReturnDate"`
	ReturnDate         *time.Time `json:"returnDate"`
	Status             string     `json:"status"`
}

// Resolve closes a pending loan. The loan is late when now is past the
// expected return date.
func (l *Loan) Resolve(now time.Time) {
	if now.After(l.ExpectedReturnDate) {
		l.Status = LoanStatusLate
	} else {
		l.Status = LoanStatusReturned
	}
	l.ReturnDate = &now
}

// ForceReturn marks the loan returned whatever its current status.
func (l *Loan) ForceReturn(now time.Time) {
	l.Status = LoanStatusReturned
	if l.ReturnDate == nil {
		l.ReturnDate = &now
	}
}
