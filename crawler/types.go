package crawler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/IDilettant/linkmap/internal/clock"
)

// Scope decides which raw references are kept and resolves the kept ones
// to absolute URLs.
type Scope interface {
	InScope(href string) bool
	Resolve(href string) string
}

// Sink receives every accepted link as soon as it is discovered.
type Sink interface {
	Put(text, target string)
}

// Journal records fetch attempts and discovered links. Recording failures
// are logged and otherwise ignored; the journal never stops a crawl.
type Journal interface {
	RecordFetch(iteration int, pageURL string, ok bool, detail string) error
	RecordLink(iteration int, text, target string) error
}

// Link is one discovered hyperlink after classification.
type Link struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

// Stats summarizes a finished crawl.
// Iterations counts dequeue operations, successful or not. Dropped counts
// links that did not fit into the work queue.
type Stats struct {
	Iterations int `json:"iterations"`
	Fetched    int `json:"fetched"`
	Failed     int `json:"failed"`
	Links      int `json:"links"`
	Dropped    int `json:"dropped"`
}

// Options configures a crawl.
// MaxIterations bounds dequeue operations, not pages reached. Delay is
// applied after successful iterations only. Logger may be left zero for
// a silent crawl; Clock defaults to real time.
type Options struct {
	Seed          string
	MaxIterations int
	Delay         time.Duration
	Timeout       time.Duration
	UserAgent     string
	Scope         Scope
	Sink          Sink
	Journal       Journal
	Logger        zerolog.Logger
	OnIteration   func(iteration int, pageURL string)
	HTTPClient    *http.Client
	Clock         clock.Timer
}
