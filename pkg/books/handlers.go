package books

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	bookService *Service
	pageSize    int
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	page := pagination.New(params.Page, h.pageSize)

	books, total, err := h.bookService.SearchBooks(ctx, SearchBooksOptions{
		Keyword:  params.Keyword,
		TagNames: params.Tags,
		Page:     page,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book  `json:"books"`
		Meta  pagination.Meta `json:"meta"`
	}{books, pagination.NewMeta(page, total)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	var viewerID *int
	if user := auth.UserFromContext(c); user != nil {
		viewerID = &user.ID
	}

	detail, err := h.bookService.RetrieveBookDetail(ctx, id, viewerID)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, detail))
}

func (h *handler) retrieveByISBN(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBookByISBN(ctx, c.Param("isbn"))
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book := &models.Book{
		Title:     params.Title,
		Author:    params.Author,
		Publisher: params.Publisher,
		ISBN:      params.ISBN,
	}

	if err := h.bookService.CreateBook(ctx, book, params.Tags); err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return err
	}

	opts := UpdateBookOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != book.Title {
		book.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Author != nil && *params.Author != book.Author {
		book.Author = *params.Author
		opts.Columns = append(opts.Columns, "author")
	}
	if params.Publisher != nil && *params.Publisher != book.Publisher {
		book.Publisher = *params.Publisher
		opts.Columns = append(opts.Columns, "publisher")
	}
	if params.ISBN != nil && models.NormalizeISBN(*params.ISBN) != book.ISBN {
		book.ISBN = *params.ISBN
		opts.Columns = append(opts.Columns, "isbn")
	}
	if params.Tags != nil {
		opts.TagNames = &params.Tags
	}

	if err := h.bookService.UpdateBook(ctx, book, opts); err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if err := h.bookService.DeleteBook(ctx, id); err != nil {
		return err
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) uploadCover(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UploadCoverPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fileHeader, ok := params.FormFiles["cover"]
	if !ok {
		return errcodes.ValidationError("cover file is required")
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return err
	}

	f, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	// Sniff the actual content instead of trusting the filename.
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return errors.WithStack(err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return errcodes.UnsupportedMediaType()
	}
	if _, err := f.Seek(0, 0); err != nil {
		return errors.WithStack(err)
	}

	objectName, err := h.bookService.store.Save(f, mtype.Extension())
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.bookService.SetCover(ctx, book, objectName); err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}
