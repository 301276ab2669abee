package crawler_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IDilettant/linkmap/crawler"
)

func TestCrawlStopsAtIterationBudget(t *testing.T) {
	t.Parallel()

	seed := "https://en.wikipedia.org/wiki/A"
	client := pageClient(map[string]string{
		seed: `<html><body><a href="/wiki/A">A again</a></body></html>`,
	})

	sink := newMapSink()
	stats, err := crawler.Crawl(context.Background(), crawler.Options{
		Seed:          seed,
		MaxIterations: 5,
		Scope:         wikiScope(t, seed),
		Sink:          sink,
		HTTPClient:    client,
		Clock:         &countingClock{},
	})
	require.NoError(t, err)

	require.Equal(t, crawler.Stats{Iterations: 5, Fetched: 5, Links: 5}, stats)
	require.Equal(t, map[string]string{"A again": seed}, sink.entries)
	require.Len(t, sink.order, 5)
}

func TestCrawlCountsLinksDroppedByFullQueue(t *testing.T) {
	t.Parallel()

	var body strings.Builder
	body.WriteString("<html><body>")
	for i := 1; i <= 15; i++ {
		fmt.Fprintf(&body, `<a href="/wiki/L%02d">L%02d</a>`, i, i)
	}
	body.WriteString("</body></html>")

	seed := "https://en.wikipedia.org/wiki/Hub"
	client := pageClient(map[string]string{seed: body.String()})

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

	// Queue capacity is MaxIterations+10; the seed was already popped,
	// so 11 of the 15 links fit. All 15 are still yielded.
	require.Equal(t, crawler.Stats{Iterations: 1, Fetched: 1, Links: 15, Dropped: 4}, stats)
	require.Len(t, sink.entries, 15)
}

func TestCrawlRevisitsRepeatedTargets(t *testing.T) {
	t.Parallel()

	seed := "https://en.wikipedia.org/wiki/A"
	counting := newCountingClient(map[string]string{
		seed: `<html><body><a href="/wiki/A">Self</a></body></html>`,
	})

	stats, err := crawler.Crawl(context.Background(), crawler.Options{
		Seed:          seed,
		MaxIterations: 3,
		Scope:         wikiScope(t, seed),
		Sink:          newMapSink(),
		HTTPClient:    counting.httpClient(),
		Clock:         &countingClock{},
	})
	require.NoError(t, err)

	require.Equal(t, 3, stats.Iterations)
	require.Equal(t, 3, counting.calls[seed])
}
