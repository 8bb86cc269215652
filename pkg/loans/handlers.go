package loans

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/envelope"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/pagination"
	"github.com/pkg/errors"
)

type handler struct {
	loanService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := auth.CurrentUser(c)

	params := CreateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loan, err := h.loanService.CreateLoan(ctx, user.ID, params.BookIDs)
	if err != nil {
		return err
	}

	return envelope.Created(c, "Loan Created Successfully", loan)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	page, err := h.loanService.ListLoans(ctx, ListLoansOptions{
		Page:   pagination.ParsePage(params.Page),
		Status: strings.TrimSpace(params.Status),
	})
	if err != nil {
		return err
	}

	return envelope.OK(c, "Loans Fetched Successfully", page)
}

func (h *handler) resolve(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("Loan")
	}

	loan, err := h.loanService.ResolveLoan(ctx, id)
	if err != nil {
		return err
	}

	return envelope.OK(c, "Loan Updated Successfully", loan)
}

// forceReturn backs DELETE /loans/:id. Loans are never removed.
func (h *handler) forceReturn(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("Loan")
	}

	loan, err := h.loanService.ForceReturnLoan(ctx, id)
	if err != nil {
		return err
	}

	return envelope.OK(c, "Loan Returned Successfully", loan)
}
