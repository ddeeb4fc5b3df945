// Package fetch retrieves remote images into memory for the anomaly pipeline.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// userAgent mimics a desktop browser. Some image hosts reject requests
// carrying the default Go client identification.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/87.0.4280.88 Safari/537.36"

// Image is the outcome of fetching a remote image. Status is the upstream
// HTTP status code; the caller decides what a non-200 means.
type Image struct {
	Status      int
	Bytes       []byte
	FileName    string
	ContentType string // "image/jpeg", "image/png", or "" when unrecognized
}

// Client downloads images over HTTP.
type Client struct {
	hc *http.Client
}

// NewClient creates a fetch client. A nil httpClient falls back to
// http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{hc: httpClient}
}

// Fetch issues a single GET for the URL and returns the response status, the
// raw body, the file name taken from the URL's last path segment, and the
// content type derived from that file name's extension. There are no retries.
// A transport-level error (connection failure, context cancellation) is
// returned as an error; a non-200 status is not.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	name := FileNameFromURL(rawURL)
	img := &Image{
		Status:      resp.StatusCode,
		Bytes:       body,
		FileName:    name,
		ContentType: ContentTypeFor(name),
	}

	log.Debug().
		Str("url", rawURL).
		Int("status", img.Status).
		Int("size", len(img.Bytes)).
		Str("fileName", img.FileName).
		Str("contentType", img.ContentType).
		Msg("Image fetched")

	if img.Status == http.StatusOK && img.ContentType != "" {
		logImageMetadata(img)
	}

	return img, nil
}

// FileNameFromURL extracts the last path segment of a URL, ignoring any
// query string.
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// ContentTypeFor derives the image content type from a file name's extension.
// Only jpeg/jpg and png are recognized; anything else yields "".
func ContentTypeFor(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return ""
	}
}

// logImageMetadata decodes image metadata for debug logging. Failures are
// expected for images without EXIF data and never affect the pipeline.
func logImageMetadata(img *Image) {
	meta, err := imagemeta.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		log.Debug().Err(err).Str("fileName", img.FileName).Msg("No readable image metadata")
		return
	}
	log.Debug().
		Str("fileName", img.FileName).
		Str("make", meta.Make).
		Str("model", meta.Model).
		Time("taken", meta.DateTimeOriginal()).
		Msg("Fetched image metadata")
}
