package users

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/envelope"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/objectstore"
	"github.com/pkg/errors"
)

type handler struct {
	userService *Service
	store       objectstore.Store
	cfg         *config.Config
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.userService.List(ctx)
	if err != nil {
		return err
	}

	return envelope.OK(c, "Users Fetched Successfully", users)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("User")
	}

	user, err := h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return envelope.OK(c, "User fetched Successfully", user)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("User")
	}
	current, _ := auth.CurrentUser(c)
	if current.ID != id {
		return errcodes.Forbidden()
	}

	params := UpdateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Update(ctx, id, UpdateOptions(params))
	if err != nil {
		return err
	}

	return envelope.OK(c, "User updated Successfully", user)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("User")
	}
	current, _ := auth.CurrentUser(c)
	if current.ID != id {
		return errcodes.Forbidden()
	}

	if err := h.userService.Delete(ctx, id); err != nil {
		return err
	}

	return envelope.OK(c, "User deleted Successfully", nil)
}

func (h *handler) uploadProfilePicture(c echo.Context) error {
	ctx := c.Request().Context()

	current, _ := auth.CurrentUser(c)

	params := UploadProfilePicturePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	file := params.FormFiles["profilePicture"]
	if file == nil {
		return errcodes.BadRequest("Profile Image is required !!")
	}

	img, err := objectstore.UploadImage(ctx, h.store, file, h.cfg.MaxUploadSizeBytes)
	if err != nil {
		return err
	}

	user, err := h.userService.UpdateProfilePicture(ctx, current.ID, img)
	if err != nil {
		return err
	}

	objectstore.DeleteReplaced(ctx, h.store, params.OldAvatarPublicID, img.ResourceType)

	return envelope.OK(c, "Avatar updated successfully", user)
}

func (h *handler) assignRole(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return errcodes.InvalidID("User")
	}
	current, _ := auth.CurrentUser(c)

	params := AssignRolePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.userService.AssignRole(ctx, current.ID, id, params.Role); err != nil {
		return err
	}

	return envelope.OK(c, "Role assigned successfully!!", nil)
}
