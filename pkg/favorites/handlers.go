package favorites

import (
	"net/http"
	"strconv"

	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	favoriteService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	favorites, err := h.favoriteService.ListByUser(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Favorites []*models.Favorite `json:"favorites"`
	}{favorites}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) add(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	favorite, err := h.favoriteService.Add(ctx, user.ID, bookID)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, favorite))
}

func (h *handler) remove(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	if err := h.favoriteService.Remove(ctx, user.ID, bookID); err != nil {
		return err
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
