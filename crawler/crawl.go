package crawler

import (
	"context"
	"errors"

	"github.com/IDilettant/linkmap/internal/clock"
	"github.com/IDilettant/linkmap/internal/fetcher"
	"github.com/IDilettant/linkmap/internal/parser"
)

// Crawl runs a bounded breadth-first traversal from opts.Seed and streams
// every accepted link into opts.Sink. It returns once the work queue is
// empty or MaxIterations tasks have been dequeued. Page-level failures are
// logged and skipped; only option validation and context cancellation
// produce an error.
func Crawl(ctx context.Context, opts Options) (Stats, error) {
	if err := validateOptions(opts); err != nil {
		return Stats{}, err
	}

	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	eng := &engine{
		opts:  opts,
		fetch: fetcher.New(opts.HTTPClient, opts.Timeout, opts.UserAgent),
	}

	return eng.run(ctx)
}

func validateOptions(opts Options) error {
	switch {
	case opts.Seed == "":
		return errors.New("seed url is required")
	case opts.HTTPClient == nil:
		return errors.New("http client is required")
	case opts.Scope == nil:
		return errors.New("scope is required")
	case opts.Sink == nil:
		return errors.New("sink is required")
	case opts.MaxIterations <= 0:
		return errors.New("max iterations must be positive")
	case opts.Delay < 0:
		return errors.New("delay must not be negative")
	}

	return nil
}

// engine owns the work queue and the iteration counter for one crawl.
type engine struct {
	opts  Options
	fetch *fetcher.Client
	stats Stats
}

func (e *engine) run(ctx context.Context) (Stats, error) {
	queue := newWorkQueue(e.opts.MaxIterations + queueSlack)
	queue.tryPush(e.opts.Seed)

	for queue.len() > 0 && e.stats.Iterations < e.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return e.stats, err
		}

		task, _ := queue.pop()
		e.stats.Iterations++

		e.opts.Logger.Info().
			Int("iteration", e.stats.Iterations).
			Str("url", task).
			Msg("get page")

		if e.opts.OnIteration != nil {
			e.opts.OnIteration(e.stats.Iterations, task)
		}

		links, err := e.visit(ctx, task)
		if err != nil {
			e.stats.Failed++
			e.opts.Logger.Error().
				Int("iteration", e.stats.Iterations).
				Str("url", task).
				Err(err).
				Msg("skip page")

			continue
		}

		e.stats.Fetched++
		for _, link := range links {
			e.accept(link, queue)
		}

		if err := e.opts.Clock.Sleep(ctx, e.opts.Delay); err != nil {
			return e.stats, err
		}
	}

	return e.stats, nil
}

// visit downloads one page and returns its in-scope links, resolved.
// A failed page never yields links, not even partially.
func (e *engine) visit(ctx context.Context, pageURL string) ([]Link, error) {
	body, err := e.fetch.Fetch(ctx, pageURL)
	if err != nil {
		e.recordFetch(pageURL, false, err.Error())

		return nil, err
	}

	anchors, err := parser.Links(body)
	if err != nil {
		e.recordFetch(pageURL, false, err.Error())

		return nil, err
	}

	e.recordFetch(pageURL, true, "")

	links := []Link{}
	for _, anchor := range anchors {
		if !e.opts.Scope.InScope(anchor.Href) {
			continue
		}

		links = append(links, Link{
			Text:   anchor.Text,
			Target: e.opts.Scope.Resolve(anchor.Href),
		})
	}

	return links, nil
}

// accept yields one link to the sink and schedules its target for traversal.
func (e *engine) accept(link Link, queue *workQueue) {
	e.opts.Sink.Put(link.Text, link.Target)
	e.stats.Links++
	e.recordLink(link)

	if !queue.tryPush(link.Target) {
		e.stats.Dropped++
	}
}

func (e *engine) recordFetch(pageURL string, ok bool, detail string) {
	if e.opts.Journal == nil {
		return
	}

	if err := e.opts.Journal.RecordFetch(e.stats.Iterations, pageURL, ok, detail); err != nil {
		e.opts.Logger.Warn().Err(err).Msg("journal fetch record failed")
	}
}

func (e *engine) recordLink(link Link) {
	if e.opts.Journal == nil {
		return
	}

	if err := e.opts.Journal.RecordLink(e.stats.Iterations, link.Text, link.Target); err != nil {
		e.opts.Logger.Warn().Err(err).Msg("journal link record failed")
	}
}
