package reviews

import (
	"strconv"
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
	reviewService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	bookID := c.Param("id")
	if _, err := uuid.Parse(bookID); err != nil {
		return errcodes.InvalidID("Book")
	}

	params := ListReviewsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	page, err := h.reviewService.List(ctx, bookID, ListOptions{
		Page:      pagination.ParsePage(params.Page),
		MinRating: parseRating(params.Rating),
	})
	if err != nil {
		return err
	}

	return envelope.OK(c, "Reviews Fetched Successfully", page)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	bookID := c.Param("id")
	if _, err := uuid.Parse(bookID); err != nil {
		return errcodes.InvalidID("Book")
	}
	user, _ := auth.CurrentUser(c)

	params := CreateReviewPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	review, err := h.reviewService.Create(ctx, bookID, user, CreateOptions(params))
	if err != nil {
		return err
	}

	return envelope.Created(c, "Review Added Successfully", review)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, reviewID, err := reviewParams(c)
	if err != nil {
		return err
	}
	user, _ := auth.CurrentUser(c)

	params := UpdateReviewPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	review, err := h.reviewService.Update(ctx, bookID, reviewID, user.ID, UpdateOptions(params))
	if err != nil {
		return err
	}

	return envelope.OK(c, "Review Updated Successfully", review)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, reviewID, err := reviewParams(c)
	if err != nil {
		return err
	}
	user, _ := auth.CurrentUser(c)

	if err := h.reviewService.Delete(ctx, bookID, reviewID, user); err != nil {
		return err
	}

	return envelope.OK(c, "Review Deleted Successfully", nil)
}

func reviewParams(c echo.Context) (bookID, reviewID string, err error) {
	bookID, reviewID = c.Param("id"), c.Param("reviewId")
	_, bookErr := uuid.Parse(bookID)
	_, reviewErr := uuid.Parse(reviewID)
	if bookErr != nil || reviewErr != nil {
		return "", "", errcodes.BadRequest("Invalid Review ID or Book ID")
	}
	return bookID, reviewID, nil
}

// parseRating returns 0 unless raw is a rating between 1 and 5.
func parseRating(raw string) int {
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || rating < 1 || rating > 5 {
		return 0
	}
	return rating
}
