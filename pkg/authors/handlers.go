package authors

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/envelope"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/pagination"
	"github.com/pkg/errors"
)

type handler struct {
	authorService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := auth.CurrentUser(c)

	c.Set("disallow_empty_body", false)
	params := CreateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.Create(ctx, user, CreateOptions(params))
	if err != nil {
		return err
	}

	return envelope.Created(c, "Author created successfully", author)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAuthorsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	page, err := h.authorService.List(ctx, ListOptions{
		Page:   pagination.ParsePage(params.Page),
		Genres: pagination.SplitList(params.Genres),
	})
	if err != nil {
		return err
	}

	return envelope.OK(c, "Authors Fetched Successfully", page)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("Author")
	}

	author, err := h.authorService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return envelope.OK(c, "Author Fetched Successfully", author)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("Author")
	}
	user, _ := auth.CurrentUser(c)

	params := UpdateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.Update(ctx, id, user.ID, UpdateOptions(params))
	if err != nil {
		return err
	}

	return envelope.OK(c, "Author Updated Successfully", author)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("Author")
	}
	user, _ := auth.CurrentUser(c)

	if err := h.authorService.Delete(ctx, id, user); err != nil {
		return err
	}

	return envelope.OK(c, "Author Account has been Deleted Successfully", nil)
}
