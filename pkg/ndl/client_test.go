package ndl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssResponse = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>search results</title>
    <item>
      <title>Learning SQL</title>
      <creator>Alan Beaulieu</creator>
      <publisher>O'Reilly</publisher>
    </item>
    <item>
      <title>Another Edition</title>
    </item>
  </channel>
</rss>`

const feedResponse = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>The Go Programming Language</title>
    <creator>Alan Donovan</creator>
    <creator>Brian Kernighan</creator>
    <publisher>Addison-Wesley</publisher>
  </entry>
</feed>`

const emptyRSSResponse = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>search results</title></channel></rss>`

func testClient(baseURL, thumbBaseURL string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: time.Second},
		thumbClient:  &http.Client{Timeout: time.Second},
		baseURL:      baseURL,
		thumbBaseURL: thumbBaseURL,
		thumbs:       newThumbnailCache(),
	}
}

func TestLookupByISBN(t *testing.T) {
	t.Parallel()

	t.Run("parses an rss envelope and normalizes the isbn", func(t *testing.T) {
		t.Parallel()

		var gotISBN string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotISBN = r.URL.Query().Get("isbn")
			w.Write([]byte(rssResponse))
		}))
		t.Cleanup(server.Close)

		client := testClient(server.URL, "")
		record, err := client.LookupByISBN(context.Background(), " 978-1-4920-5761-1 ")
		require.NoError(t, err)

		assert.Equal(t, "9781492057611", gotISBN)
		assert.Equal(t, "Learning SQL", record.Title)
		assert.Equal(t, "Alan Beaulieu", record.Author)
		assert.Equal(t, "O'Reilly", record.Publisher)
		assert.Equal(t, "9781492057611", record.ISBN)
	})

	t.Run("parses an atom feed and joins multiple creators", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(feedResponse))
		}))
		t.Cleanup(server.Close)

		client := testClient(server.URL, "")
		record, err := client.LookupByISBN(context.Background(), "9780134190440")
		require.NoError(t, err)

		assert.Equal(t, "The Go Programming Language", record.Title)
		assert.Equal(t, "Alan Donovan, Brian Kernighan", record.Author)
		assert.Equal(t, "Addison-Wesley", record.Publisher)
	})

	t.Run("no matches is a not found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(emptyRSSResponse))
		}))
		t.Cleanup(server.Close)

		client := testClient(server.URL, "")
		_, err := client.LookupByISBN(context.Background(), "9780000000000")
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, "not_found", codeErr.Code)
	})

	t.Run("an upstream error status is a bad gateway", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		client := testClient(server.URL, "")
		_, err := client.LookupByISBN(context.Background(), "9780000000000")
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, http.StatusBadGateway, codeErr.HTTPCode)
	})

	t.Run("an unreachable upstream is a bad gateway", func(t *testing.T) {
		t.Parallel()

		client := testClient("http://127.0.0.1:1", "")
		_, err := client.LookupByISBN(context.Background(), "9780000000000")
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, http.StatusBadGateway, codeErr.HTTPCode)
	})
}

func TestThumbnail(t *testing.T) {
	t.Parallel()

	t.Run("fetches and caches the image", func(t *testing.T) {
		t.Parallel()

		hits := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			assert.Equal(t, "/9781492057611.jpg", r.URL.Path)
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("jpeg-bytes"))
		}))
		t.Cleanup(server.Close)

		client := testClient("", server.URL)

		thumb, err := client.Thumbnail(context.Background(), "978-1-4920-5761-1")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", thumb.ContentType)
		assert.Equal(t, []byte("jpeg-bytes"), thumb.Data)

		// The second request, with different hyphenation, is served from memory.
		_, err = client.Thumbnail(context.Background(), "9781492057611")
		require.NoError(t, err)
		assert.Equal(t, 1, hits)
	})

	t.Run("cached entries expire", func(t *testing.T) {
		t.Parallel()

		hits := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.Write([]byte("jpeg-bytes"))
		}))
		t.Cleanup(server.Close)

		client := testClient("", server.URL)

		_, err := client.Thumbnail(context.Background(), "9781492057611")
		require.NoError(t, err)

		client.thumbs.now = func() time.Time {
			return time.Now().Add(25 * time.Hour)
		}

		_, err = client.Thumbnail(context.Background(), "9781492057611")
		require.NoError(t, err)
		assert.Equal(t, 2, hits)
	})

	t.Run("a missing cover is a not found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(server.Close)

		client := testClient("", server.URL)
		_, err := client.Thumbnail(context.Background(), "9780000000000")
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, "not_found", codeErr.Code)
	})

	t.Run("defaults the content type when upstream omits it", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header()["Content-Type"] = nil
			w.Write([]byte{0xff, 0xd8})
		}))
		t.Cleanup(server.Close)

		client := testClient("", server.URL)
		thumb, err := client.Thumbnail(context.Background(), "9781492057611")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", thumb.ContentType)
	})
}
