package testutils

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db *bun.DB
}

// createUserRequest is the request body for creating a test user.
type createUserRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"omitempty,oneof=admin author user"`
}

// createUser creates a verified user with any role.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := CreateUser(ctx, h.db, UserOptions{
		Fullname: req.Fullname,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Verified: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	return c.JSON(http.StatusCreated, user)
}

// deleteAllDataResponse is the response body for wiping the database.
type deleteAllDataResponse struct {
	Deleted int `json:"deleted"`
}

// deleteAllData deletes every row from every table.
// DELETE /test/data.
func (h *handler) deleteAllData(c echo.Context) error {
	ctx := c.Request().Context()

	var deleted int64
	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*models.Review)(nil),
			(*models.Loan)(nil),
			(*models.Book)(nil),
			(*models.Author)(nil),
			(*models.User)(nil),
		} {
			result, err := tx.NewDelete().Model(model).Where("1=1").Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			n, _ := result.RowsAffected()
			deleted += n
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete data")
	}

	return c.JSON(http.StatusOK, deleteAllDataResponse{
		Deleted: int(deleted),
	})
}
