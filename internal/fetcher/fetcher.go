// Package fetcher downloads web pages over HTTP.
package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
)

// maxBodySize caps how many bytes of a response body are read.
const maxBodySize = 10 << 20

// Error reports a failed page download. StatusCode is zero when the
// transport failed before a response arrived; the transport cause is kept
// for unwrapping but never appears in the message.
type Error struct {
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}

	return "unable to download the web page"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client performs GET requests and normalizes response bodies.
// It never retries; a failed download is the caller's problem.
type Client struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// New creates a Client around the provided http.Client.
func New(client *http.Client, timeout time.Duration, userAgent string) *Client {
	return &Client{
		client:    client,
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Fetch downloads the page at rawURL. The only accepted status code is 200.
// Bodies are decompressed and converted to UTF-8 before being returned.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	requestCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		requestCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	request, err := c.newRequest(requestCtx, rawURL)
	if err != nil {
		return nil, &Error{Err: err}
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, &Error{StatusCode: response.StatusCode}
	}

	body, err := readBody(response)
	if err != nil {
		return nil, &Error{Err: err}
	}

	return body, nil
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	if parsedURL.Path == "" {
		parsedURL.Path = "/"
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, err
	}

	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}
	request.Header.Set("Accept-Encoding", "gzip, deflate, br")

	return request, nil
}

// readBody reads up to maxBodySize bytes, undoing the negotiated content
// encoding and converting the declared charset to UTF-8.
func readBody(response *http.Response) ([]byte, error) {
	reader, err := decodeBody(response.Body, response.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	reader = convertCharset(reader, response.Header.Get("Content-Type"))

	body, err := io.ReadAll(io.LimitReader(reader, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

func decodeBody(body io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "gzip":
		return gzip.NewReader(body)
	case "deflate":
		return flate.NewReader(body), nil
	case "br":
		return brotli.NewReader(body), nil
	default:
		// Unknown encodings pass through untouched.
		return body, nil
	}
}

func convertCharset(body io.Reader, contentType string) io.Reader {
	converted, err := charset.NewReader(body, contentType)
	if err != nil {
		return body
	}

	return converted
}
