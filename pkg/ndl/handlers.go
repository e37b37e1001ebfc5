package ndl

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type handler struct {
	client *Client
}

func (h *handler) lookup(c echo.Context) error {
	params := LookupQuery{}
	if err := c.Bind(&params); err != nil {
		return err
	}

	record, err := h.client.LookupByISBN(c.Request().Context(), params.ISBN)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

func (h *handler) thumbnail(c echo.Context) error {
	thumb, err := h.client.Thumbnail(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		return err
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, thumb.ContentType, thumb.Data)
}
