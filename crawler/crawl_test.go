package crawler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IDilettant/linkmap/crawler"
	"github.com/IDilettant/linkmap/internal/scope"
)

func TestCrawlYieldsInternalLinksFromSeed(t *testing.T) {
	t.Parallel()

	seed := "https://en.wikipedia.org/wiki/A"
	client := pageClient(map[string]string{
		seed: `<html><body>
			<p>Intro</p>
			<a href="/wiki/B">B</a>
			<a href="https://example.com/x">Elsewhere</a>
		</body></html>`,
	})

	sink := newMapSink()
	stats, err := crawler.Crawl(context.Background(), crawler.Options{
		Seed:          seed,
		MaxIterations: 1,
		Scope:         wikiScope(t, seed),
		Sink:          sink,
		HTTPClient:    client,
		Clock:         &countingClock{},
	})
	require.NoError(t, err)

	require.Equal(t, crawler.Stats{Iterations: 1, Fetched: 1, Links: 1}, stats)
	require.Equal(t, map[string]string{"B": "https://en.wikipedia.org/wiki/B"}, sink.entries)
}

func TestCrawlSecureModeFollowsAcceptedLinks(t *testing.T) {
	t.Parallel()

	client := pageClient(map[string]string{
		"https://start.example/": `<html><body>
			<a href="https://second.example/page">Second</a>
			<a href="http://plain.example/">Plain</a>
		</body></html>`,
		"https://second.example/page": `<html><body>
			<a href="https://third.example/">Third</a>
		</body></html>`,
	})

	sink := newMapSink()
	stats, err := crawler.Crawl(context.Background(), crawler.Options{
		Seed:          "https://start.example/",
		MaxIterations: 2,
		Scope:         scope.Secure{},
		Sink:          sink,
		HTTPClient:    client,
		Clock:         &countingClock{},
	})
	require.NoError(t, err)

	require.Equal(t, crawler.Stats{Iterations: 2, Fetched: 2, Links: 2}, stats)
	require.Equal(t, map[string]string{
		"Second": "https://second.example/page",
		"Third":  "https://third.example/",
	}, sink.entries)
}

func TestCrawlReportsIterationsToHook(t *testing.T) {
	t.Parallel()

	seed := "https://en.wikipedia.org/wiki/A"
	resolvedB := "https://en.wikipedia.org/wiki/B"
	client := pageClient(map[string]string{
		seed:      `<html><body><a href="/wiki/B">B</a></body></html>`,
		resolvedB: `<html><body>terminal</body></html>`,
	})

	var iterations []int
	var urls []string

	_, err := crawler.Crawl(context.Background(), crawler.Options{
		Seed:          seed,
		MaxIterations: 5,
		Scope:         wikiScope(t, seed),
		Sink:          newMapSink(),
		HTTPClient:    client,
		Clock:         &countingClock{},
		OnIteration: func(iteration int, pageURL string) {
			iterations = append(iterations, iteration)
			urls = append(urls, pageURL)
		},
	})
	require.NoError(t, err)

	require.Equal(t, []int{1, 2}, iterations)
	require.Equal(t, []string{seed, resolvedB}, urls)
}

func TestCrawlStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	seed := "https://en.wikipedia.org/wiki/A"
	client := pageClient(map[string]string{
		seed: `<html><body><a href="/wiki/B">B</a></body></html>`,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := crawler.Crawl(ctx, crawler.Options{
		Seed:          seed,
		MaxIterations: 10,
		Scope:         wikiScope(t, seed),
		Sink:          newMapSink(),
		HTTPClient:    client,
		Clock:         &countingClock{},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, stats.Iterations)
}

func TestCrawlValidatesOptions(t *testing.T) {
	t.Parallel()

	seed := "https://en.wikipedia.org/wiki/A"
	valid := func(t *testing.T) crawler.Options {
		t.Helper()

		return crawler.Options{
			Seed:          seed,
			MaxIterations: 1,
			Scope:         wikiScope(t, seed),
			Sink:          newMapSink(),
			HTTPClient:    pageClient(nil),
			Clock:         &countingClock{},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*crawler.Options)
		wantErr string
	}{
		{
			name:    "missing seed",
			mutate:  func(o *crawler.Options) { o.Seed = "" },
			wantErr: "seed url is required",
		},
		{
			name:    "missing http client",
			mutate:  func(o *crawler.Options) { o.HTTPClient = nil },
			wantErr: "http client is required",
		},
		{
			name:    "missing scope",
			mutate:  func(o *crawler.Options) { o.Scope = nil },
			wantErr: "scope is required",
		},
		{
			name:    "missing sink",
			mutate:  func(o *crawler.Options) { o.Sink = nil },
			wantErr: "sink is required",
		},
		{
			name:    "zero iteration budget",
			mutate:  func(o *crawler.Options) { o.MaxIterations = 0 },
			wantErr: "max iterations must be positive",
		},
		{
			name:    "negative delay",
			mutate:  func(o *crawler.Options) { o.Delay = -1 },
			wantErr: "delay must not be negative",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opts := valid(t)
			tc.mutate(&opts)

			stats, err := crawler.Crawl(context.Background(), opts)
			require.EqualError(t, err, tc.wantErr)
			require.Equal(t, crawler.Stats{}, stats)
		})
	}
}
