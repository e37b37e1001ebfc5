package ndl

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/pkg/errors"
)

// thumbnailTTL is how long fetched thumbnails are served from memory. Covers
// basically never change upstream, so a day keeps repeat catalog views off
// the NDL servers.
const thumbnailTTL = 24 * time.Hour

// Thumbnail is a fetched cover image.
type Thumbnail struct {
	Data        []byte
	ContentType string
}

type thumbnailCache struct {
	mu      sync.Mutex
	entries map[string]thumbnailEntry
	now     func() time.Time
}

type thumbnailEntry struct {
	thumb     *Thumbnail
	fetchedAt time.Time
}

func newThumbnailCache() *thumbnailCache {
	return &thumbnailCache{
		entries: map[string]thumbnailEntry{},
		now:     time.Now,
	}
}

func (c *thumbnailCache) get(key string) (*Thumbnail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.fetchedAt) > thumbnailTTL {
		return nil, false
	}
	return entry.thumb, true
}

func (c *thumbnailCache) put(key string, thumb *Thumbnail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = thumbnailEntry{thumb: thumb, fetchedAt: c.now()}
}

// Thumbnail proxies the cover image for an ISBN, serving from the in-memory
// cache when a fresh copy exists.
func (c *Client) Thumbnail(ctx context.Context, isbn string) (*Thumbnail, error) {
	normalized := models.NormalizeISBN(isbn)

	if thumb, ok := c.thumbs.get(normalized); ok {
		return thumb, nil
	}

	reqURL := c.thumbBaseURL + "/" + normalized + ".jpg"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := c.thumbClient.Do(req)
	if err != nil {
		return nil, errcodes.UpstreamFailure("Thumbnail fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errcodes.NotFound("Thumbnail")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errcodes.UpstreamFailure("Thumbnail fetch failed")
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, errcodes.NotFound("Thumbnail")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, errcodes.UpstreamFailure("Thumbnail fetch failed")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	thumb := &Thumbnail{Data: data, ContentType: contentType}
	c.thumbs.put(normalized, thumb)

	return thumb, nil
}
