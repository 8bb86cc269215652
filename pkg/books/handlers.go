package books

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/envelope"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/objectstore"
	"github.com/librisapp/libris/pkg/pagination"
	"github.com/pkg/errors"
)

type handler struct {
	bookService *Service
	store       objectstore.Store
	cfg         *config.Config
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := auth.CurrentUser(c)

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	publishedDate, err := binder.ParseISO8601(params.PublishedDate)
	if err != nil {
		return errInvalidPublishedDate()
	}

	book, err := h.bookService.CreateBook(ctx, user.ID, CreateBookOptions{
		ISBN:                 params.ISBN,
		Title:                params.Title,
		Description:          params.Description,
		Categories:           params.Categories,
		Edition:              params.Edition,
		Price:                *params.Price,
		AvailableStock:       *params.AvailableStock,
		PublishedDate:        publishedDate,
		Pages:                *params.Pages,
		AvailableInLanguages: params.AvailableInLanguages,
	})
	if err != nil {
		return err
	}

	return envelope.Created(c, "Book Added Successfully", book)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	page, err := h.bookService.ListBooks(ctx, ListBooksOptions{
		Page:       pagination.ParsePage(params.Page),
		Title:      params.Title,
		Categories: pagination.SplitList(params.Categories),
		MinPrice:   parsePrice(params.MinPrice),
		MaxPrice:   parsePrice(params.MaxPrice),
		Languages:  pagination.SplitList(params.Languages),
	})
	if err != nil {
		return err
	}

	return envelope.OK(c, "Books Fetched Successfully", page)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return err
	}

	return envelope.OK(c, "Book Fetched Successfully", book)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("Book")
	}
	user, _ := auth.CurrentUser(c)

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateBookOptions{
		ISBN:                 params.ISBN,
		Title:                params.Title,
		Description:          params.Description,
		Categories:           params.Categories,
		Edition:              params.Edition,
		Price:                params.Price,
		AvailableStock:       params.AvailableStock,
		Pages:                params.Pages,
		AvailableInLanguages: params.AvailableInLanguages,
	}
	if params.PublishedDate != nil {
		publishedDate, err := binder.ParseISO8601(*params.PublishedDate)
		if err != nil {
			return errInvalidPublishedDate()
		}
		opts.PublishedDate = &publishedDate
	}

	book, err := h.bookService.RetrieveOwnedBook(ctx, id, user.ID)
	if err != nil {
		return err
	}

	book, err = h.bookService.UpdateBook(ctx, book, opts)
	if err != nil {
		return err
	}

	return envelope.OK(c, "Book updated successfully", book)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("Book")
	}
	user, _ := auth.CurrentUser(c)

	if err := h.bookService.DeleteBook(ctx, id, user); err != nil {
		return err
	}

	return envelope.OK(c, "Book deleted successfully", nil)
}

func (h *handler) uploadCover(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("Book")
	}
	user, _ := auth.CurrentUser(c)

	book, err := h.bookService.RetrieveOwnedBook(ctx, id, user.ID)
	if err != nil {
		return err
	}

	params := UploadCoverPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	file := params.FormFiles["coverImage"]
	if file == nil {
		return errcodes.BadRequest("Book Cover Image is required !!")
	}

	img, err := objectstore.UploadImage(ctx, h.store, file, h.cfg.MaxUploadSizeBytes)
	if err != nil {
		return err
	}

	book, err = h.bookService.UpdateCoverImage(ctx, book, img)
	if err != nil {
		return err
	}

	objectstore.DeleteReplaced(ctx, h.store, params.OldCoverImagePublicID, img.ResourceType)

	return envelope.OK(c, "Book Cover Image updated successfully", book)
}

// parsePrice returns nil for anything that isn't a number.
func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) {
		return nil
	}
	return &price
}

func errInvalidPublishedDate() error {
	return errcodes.BadRequest("publishedDate must be a valid ISO 8601 date")
}
