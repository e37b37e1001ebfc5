package inventory

import (
	"net/http"
	"time"

	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	inventoryService *Service
	pageSize         int
}

func (h *handler) check(c echo.Context) error {
	ctx := c.Request().Context()

	params := CheckBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.inventoryService.CheckBookByISBN(ctx, params.ISBN)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) clear(c echo.Context) error {
	ctx := c.Request().Context()

	event, err := h.inventoryService.ClearChecks(ctx)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, event))
}

func (h *handler) unchecked(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	page := pagination.New(params.Page, h.pageSize)
	books, total, err := h.inventoryService.ListUncheckedBooks(ctx, page)
	if err != nil {
		return errors.WithStack(err)
	}

	lastClearedAt, err := h.inventoryService.LastClearedAt(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books         []*models.Book  `json:"books"`
		LastClearedAt *time.Time      `json:"last_cleared_at"`
		Meta          pagination.Meta `json:"meta"`
	}{books, lastClearedAt, pagination.NewMeta(page, total)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) statuses(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	page := pagination.New(params.Page, h.pageSize)
	statuses, total, err := h.inventoryService.ListBookStatuses(ctx, page)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Statuses []*BookStatus   `json:"statuses"`
		Meta     pagination.Meta `json:"meta"`
	}{statuses, pagination.NewMeta(page, total)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
