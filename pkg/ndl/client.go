// Package ndl looks up bibliographic records and cover thumbnails from the
// National Diet Library search service.
package ndl

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/pkg/errors"
)

const (
	defaultBaseURL      = "https://ndlsearch.ndl.go.jp/api/opensearch"
	defaultThumbBaseURL = "https://ndlsearch.ndl.go.jp/thumbnail"

	// The upstream service can be slow; cap how long a catalog form waits.
	lookupTimeout = 10 * time.Second
	thumbTimeout  = 8 * time.Second
)

// Record is a bibliographic record resolved from an ISBN.
type Record struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	ISBN      string `json:"isbn"`
}

type Client struct {
	httpClient   *http.Client
	thumbClient  *http.Client
	baseURL      string
	thumbBaseURL string

	thumbs *thumbnailCache
}

// NewClient creates an NDL client with production endpoints.
func NewClient() *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: lookupTimeout},
		thumbClient:  &http.Client{Timeout: thumbTimeout},
		baseURL:      defaultBaseURL,
		thumbBaseURL: defaultThumbBaseURL,
		thumbs:       newThumbnailCache(),
	}
}

// The OpenSearch endpoint answers with an RSS envelope, but some mirrors and
// older responses use an Atom feed. Both get decoded into the same shape.
type rssEnvelope struct {
	XMLName xml.Name   `xml:"rss"`
	Items   []bibEntry `xml:"channel>item"`
}

type feedEnvelope struct {
	XMLName xml.Name   `xml:"feed"`
	Entries []bibEntry `xml:"entry"`
}

type bibEntry struct {
	Title      string   `xml:"title"`
	Creators   []string `xml:"creator"`
	Publishers []string `xml:"publisher"`
}

// LookupByISBN queries the OpenSearch endpoint and returns the first record.
func (c *Client) LookupByISBN(ctx context.Context, isbn string) (*Record, error) {
	normalized := models.NormalizeISBN(isbn)

	reqURL := c.baseURL + "?cnt=1&isbn=" + url.QueryEscape(normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errcodes.UpstreamFailure("Bibliographic lookup failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errcodes.UpstreamFailure("Bibliographic lookup failed")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errcodes.UpstreamFailure("Bibliographic lookup failed")
	}

	entry, ok := firstEntry(body)
	if !ok {
		return nil, errcodes.NotFound("Bibliographic record")
	}

	return &Record{
		Title:     strings.TrimSpace(entry.Title),
		Author:    strings.TrimSpace(strings.Join(entry.Creators, ", ")),
		Publisher: strings.TrimSpace(strings.Join(entry.Publishers, ", ")),
		ISBN:      normalized,
	}, nil
}

func firstEntry(body []byte) (bibEntry, bool) {
	rss := rssEnvelope{}
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Items) > 0 {
		return rss.Items[0], true
	}

	feed := feedEnvelope{}
	if err := xml.Unmarshal(body, &feed); err == nil && len(feed.Entries) > 0 {
		return feed.Entries[0], true
	}

	return bibEntry{}, false
}
