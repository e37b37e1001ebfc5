package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindPayload struct {
	Title string `json:"title" mod:"trim" validate:"required"`
	ISBN  string `json:"isbn" validate:"omitempty,isbn_loose"`
	Role  string `json:"role" validate:"omitempty,oneof=user librarian admin"`
}

type bindQuery struct {
	Page    int    `query:"page" json:"page" validate:"gte=0"`
	Keyword string `query:"keyword" json:"keyword"`
}

func newBindContext(t *testing.T, method, body string) echo.Context {
	t.Helper()

	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestBindJSON(t *testing.T) {
	t.Parallel()

	b, err := New()
	require.NoError(t, err)

	t.Run("binds and trims a valid payload", func(t *testing.T) {
		t.Parallel()

		c := newBindContext(t, http.MethodPost, `{"title":"  Go in Practice  ","isbn":"978-4-297-12345-6"}`)
		p := bindPayload{}
		err := b.Bind(&p, c)
		require.NoError(t, err)
		assert.Equal(t, "Go in Practice", p.Title)
		assert.Equal(t, "978-4-297-12345-6", p.ISBN)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		c := newBindContext(t, http.MethodPost, `{"title":"x","titel":"typo"}`)
		p := bindPayload{}
		err := b.Bind(&p, c)
		require.Error(t, err)
		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, http.StatusBadRequest, cerr.HTTPCode)
		assert.Contains(t, cerr.Message, "titel")
	})

	t.Run("rejects type mismatches with a useful message", func(t *testing.T) {
		t.Parallel()

		c := newBindContext(t, http.MethodPost, `{"title":123}`)
		p := bindPayload{}
		err := b.Bind(&p, c)
		require.Error(t, err)
		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Message, "title should be of type string")
	})

	t.Run("rejects a missing required field", func(t *testing.T) {
		t.Parallel()

		c := newBindContext(t, http.MethodPost, `{"isbn":"9784297123456"}`)
		p := bindPayload{}
		err := b.Bind(&p, c)
		require.Error(t, err)
		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "title is required", cerr.Message)
	})

	t.Run("rejects a malformed isbn", func(t *testing.T) {
		t.Parallel()

		c := newBindContext(t, http.MethodPost, `{"title":"x","isbn":"not-an-isbn"}`)
		p := bindPayload{}
		err := b.Bind(&p, c)
		require.Error(t, err)
		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "isbn should be 10 to 13 digits, hyphens allowed", cerr.Message)
	})

	t.Run("rejects a role outside the allowed set", func(t *testing.T) {
		t.Parallel()

		c := newBindContext(t, http.MethodPost, `{"title":"x","role":"owner"}`)
		p := bindPayload{}
		err := b.Bind(&p, c)
		require.Error(t, err)
		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "role should be one of the following: user, librarian, admin", cerr.Message)
	})

	t.Run("rejects an empty body on POST", func(t *testing.T) {
		t.Parallel()

		c := newBindContext(t, http.MethodPost, "")
		p := bindPayload{}
		err := b.Bind(&p, c)
		require.Error(t, err)
		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "empty_request_body", cerr.Code)
	})

	t.Run("rejects unsupported content types", func(t *testing.T) {
		t.Parallel()

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("<title>x</title>"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationXML)
		c := e.NewContext(req, httptest.NewRecorder())
		p := bindPayload{}
		err := b.Bind(&p, c)
		require.Error(t, err)
		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, http.StatusUnsupportedMediaType, cerr.HTTPCode)
	})
}

func TestBindQuery(t *testing.T) {
	t.Parallel()

	b, err := New()
	require.NoError(t, err)

	t.Run("decodes query params on GET", func(t *testing.T) {
		t.Parallel()

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/?page=3&keyword=gopher", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		q := bindQuery{}
		err := b.Bind(&q, c)
		require.NoError(t, err)
		assert.Equal(t, 3, q.Page)
		assert.Equal(t, "gopher", q.Keyword)
	})

	t.Run("rejects non-numeric page", func(t *testing.T) {
		t.Parallel()

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/?page=three", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		q := bindQuery{}
		err := b.Bind(&q, c)
		require.Error(t, err)
		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Message, "page should be of type int")
	})

	t.Run("rejects a negative page", func(t *testing.T) {
		t.Parallel()

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/?page=-1", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		q := bindQuery{}
		err := b.Bind(&q, c)
		require.Error(t, err)
		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "page should be greater than or equal to 0", cerr.Message)
	})
}
