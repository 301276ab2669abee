package crawler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IDilettant/linkmap/internal/scope"
)

var errJournalClosed = errors.New("journal closed")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return fn(req) }

func responseWithBody(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}

	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func htmlHeader() http.Header {
	header := http.Header{}
	header.Set("Content-Type", "text/html; charset=utf-8")

	return header
}

// pageClient serves the given URL -> HTML pages and answers 404 elsewhere.
func pageClient(pages map[string]string) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if page, ok := pages[req.URL.String()]; ok {
				return responseWithBody(http.StatusOK, []byte(page), htmlHeader()), nil
			}

			return responseWithBody(http.StatusNotFound, []byte("not found"), nil), nil
		}),
	}
}

// countingClient is a pageClient that also counts fetches per URL.
type countingClient struct {
	pages map[string]string
	calls map[string]int
}

func newCountingClient(pages map[string]string) *countingClient {
	return &countingClient{pages: pages, calls: map[string]int{}}
}

func (c *countingClient) httpClient() *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			url := req.URL.String()
			c.calls[url]++

			if page, ok := c.pages[url]; ok {
				return responseWithBody(http.StatusOK, []byte(page), htmlHeader()), nil
			}

			return responseWithBody(http.StatusNotFound, []byte("not found"), nil), nil
		}),
	}
}

// countingClock records every sleep instead of waiting.
type countingClock struct {
	sleeps []time.Duration
}

func (c *countingClock) Now() time.Time { return time.Unix(0, 0) }

func (c *countingClock) Sleep(ctx context.Context, duration time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		c.sleeps = append(c.sleeps, duration)

		return nil
	}
}

// mapSink collects yielded links in arrival order and as a folded map.
type mapSink struct {
	entries map[string]string
	order   []string
}

func newMapSink() *mapSink {
	return &mapSink{entries: map[string]string{}}
}

func (s *mapSink) Put(text, target string) {
	s.entries[text] = target
	s.order = append(s.order, target)
}

func wikiScope(t *testing.T, seed string) *scope.Site {
	t.Helper()

	site, err := scope.Wikipedia.ParseSeed(seed)
	require.NoError(t, err)

	return site
}

type journalFetch struct {
	iteration int
	url       string
	ok        bool
	detail    string
}

type journalLink struct {
	iteration int
	text      string
	target    string
}

// recordingJournal captures journal calls; with failing set it rejects all.
type recordingJournal struct {
	fetches []journalFetch
	links   []journalLink
	failing bool
}

func (j *recordingJournal) RecordFetch(iteration int, pageURL string, ok bool, detail string) error {
	if j.failing {
		return errJournalClosed
	}

	j.fetches = append(j.fetches, journalFetch{iteration: iteration, url: pageURL, ok: ok, detail: detail})

	return nil
}

func (j *recordingJournal) RecordLink(iteration int, text, target string) error {
	if j.failing {
		return errJournalClosed
	}

	j.links = append(j.links, journalLink{iteration: iteration, text: text, target: target})

	return nil
}
