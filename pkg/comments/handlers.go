package comments

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
	commentService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	comments, err := h.commentService.ListByBook(ctx, bookID)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Comments []*models.Comment `json:"comments"`
	}{comments}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := CreateCommentPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	comment, err := h.commentService.Create(ctx, user.ID, bookID, params.Body)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, comment))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Comment")
	}

	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	if err := h.commentService.Delete(ctx, id, user); err != nil {
		return err
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
