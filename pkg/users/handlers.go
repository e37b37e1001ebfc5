package users

import (
	"net/http"
	"strconv"

	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/loans"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	userService *Service
	loanService *loans.Service
	pageSize    int
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	page := pagination.New(params.Page, h.pageSize)

	users, total, err := h.userService.ListUsers(ctx, ListUsersOptions{
		Keyword: params.Keyword,
		Page:    page,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Users []*models.User  `json:"users"`
		Meta  pagination.Meta `json:"meta"`
	}{users, pagination.NewMeta(page, total)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	user, err := h.userService.RetrieveUser(ctx, id)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.CreateUser(ctx, CreateUserOptions{
		Email:       params.Email,
		Name:        params.Name,
		DisplayName: params.DisplayName,
		Password:    params.Password,
		Role:        params.Role,
	})
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, user))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	params := UpdateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.UpdateUser(ctx, id, UpdateUserOptions{
		Email:       params.Email,
		Name:        params.Name,
		DisplayName: params.DisplayName,
		Role:        params.Role,
		Disabled:    params.Disabled,
	})
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) requestReturn(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	loan, err := h.loanService.RequestReturnByUser(ctx, id)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()

	params := RegisterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	err := h.userService.Register(ctx, RegisterOptions{
		Email:       params.Email,
		Name:        params.Name,
		DisplayName: params.DisplayName,
		Password:    params.Password,
	})
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, map[string]string{
		"message": "Check your inbox for a verification link.",
	}))
}

func (h *handler) verifyEmail(c echo.Context) error {
	ctx := c.Request().Context()

	params := VerifyEmailPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.VerifyEmail(ctx, params.Token)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, user))
}

func (h *handler) requestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	params := RequestPasswordResetPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.userService.RequestPasswordReset(ctx, params.Email); err != nil {
		return err
	}

	// Identical response whether or not the address has an account.
	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{
		"message": "If that address has an account, a reset link is on its way.",
	}))
}

func (h *handler) confirmPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	params := ConfirmPasswordResetPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.userService.ConfirmPasswordReset(ctx, params.Token, params.Password); err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{
		"message": "Your password has been updated.",
	}))
}

func (h *handler) updateDisplayName(c echo.Context) error {
	ctx := c.Request().Context()

	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("You must be logged in")
	}

	params := UpdateDisplayNamePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	updated, err := h.userService.UpdateDisplayName(ctx, user.ID, params.DisplayName)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, updated))
}
