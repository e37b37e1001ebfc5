package covers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	t.Run("saves and resolves objects", func(t *testing.T) {
		t.Parallel()

		name, err := store.Save(strings.NewReader("jpeg bytes"), ".jpg")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".jpg"))

		path, err := store.Path(name)
		require.NoError(t, err)
		assert.NotEmpty(t, path)
	})

	t.Run("adds the missing dot to extensions", func(t *testing.T) {
		t.Parallel()

		name, err := store.Save(strings.NewReader("png bytes"), "png")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".png"))
	})

	t.Run("rejects path traversal in object names", func(t *testing.T) {
		t.Parallel()

		_, err := store.Path("../../etc/passwd")
		assert.Error(t, err)
	})

	t.Run("tolerates deleting a missing object", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, store.Delete("does-not-exist.jpg"))
	})
}

func parseSignedURL(t *testing.T, signed string) (name, exp, sig string) {
	t.Helper()

	u, err := url.Parse(signed)
	require.NoError(t, err)
	name = strings.TrimPrefix(u.Path, "/covers/")
	return name, u.Query().Get("exp"), u.Query().Get("sig")
}

func TestSigner(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a valid signature", func(t *testing.T) {
		t.Parallel()

		signer := NewSigner("secret")
		name, exp, sig := parseSignedURL(t, signer.SignedURL("cover.jpg"))
		assert.Equal(t, "cover.jpg", name)
		assert.True(t, signer.Verify(name, exp, sig))
	})

	t.Run("rejects a tampered name", func(t *testing.T) {
		t.Parallel()

		signer := NewSigner("secret")
		_, exp, sig := parseSignedURL(t, signer.SignedURL("cover.jpg"))
		assert.False(t, signer.Verify("other.jpg", exp, sig))
	})

	t.Run("rejects a signature from another secret", func(t *testing.T) {
		t.Parallel()

		name, exp, sig := parseSignedURL(t, NewSigner("secret-one").SignedURL("cover.jpg"))
		assert.False(t, NewSigner("secret-two").Verify(name, exp, sig))
	})

	t.Run("rejects an expired signature", func(t *testing.T) {
		t.Parallel()

		signer := NewSigner("secret")
		name, exp, sig := parseSignedURL(t, signer.SignedURL("cover.jpg"))

		signer.now = func() time.Time { return time.Now().Add(2 * SignedURLTTL) }
		assert.False(t, signer.Verify(name, exp, sig))
	})

	t.Run("memoizes within the ttl and re-signs after it", func(t *testing.T) {
		t.Parallel()

		current := time.Now()
		signer := NewSigner("secret")
		signer.now = func() time.Time { return current }

		first := signer.SignedURL("cover.jpg")
		assert.Equal(t, first, signer.SignedURL("cover.jpg"))

		current = current.Add(SignedURLTTL)
		assert.NotEqual(t, first, signer.SignedURL("cover.jpg"))
	})
}

func TestServe(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	signer := NewSigner("secret")
	h := &handler{store: store, signer: signer}

	name, err := store.Save(strings.NewReader("jpeg bytes"), ".jpg")
	require.NoError(t, err)

	newServeContext := func(name, exp, sig string) (echo.Context, *httptest.ResponseRecorder) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/covers/"+name+"?exp="+exp+"&sig="+sig, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/covers/:name")
		c.SetParamNames("name")
		c.SetParamValues(name)
		return c, rec
	}

	t.Run("serves a validly signed cover", func(t *testing.T) {
		t.Parallel()

		parsedName, exp, sig := parseSignedURL(t, signer.SignedURL(name))
		c, rec := newServeContext(parsedName, exp, sig)
		require.NoError(t, h.serve(c))
		assert.Equal(t, "jpeg bytes", rec.Body.String())
	})

	t.Run("rejects a bad signature as not found", func(t *testing.T) {
		t.Parallel()

		parsedName, exp, _ := parseSignedURL(t, signer.SignedURL(name))
		c, _ := newServeContext(parsedName, exp, "bogus")
		err := h.serve(c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
