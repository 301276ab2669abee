package app

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli"

	"github.com/IDilettant/linkmap/crawler"
	"github.com/IDilettant/linkmap/internal/clock"
	"github.com/IDilettant/linkmap/internal/config"
	"github.com/IDilettant/linkmap/internal/history"
	"github.com/IDilettant/linkmap/internal/logging"
	"github.com/IDilettant/linkmap/internal/scope"
	"github.com/IDilettant/linkmap/internal/sink"
)

// Run executes the CLI: it crawls from the seed URL and writes the collected
// link map to the output file as JSON.
func Run(args []string, stdout, stderr io.Writer, client *http.Client, clk clock.Timer) error {
	app := cli.NewApp()
	app.Name = "linkmap"
	app.Usage = "collect a map of internal links reachable from a seed url"
	app.UsageText = "linkmap --url <seed> --output <file> [options]"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = flags()
	app.Action = func(c *cli.Context) error {
		return run(c, stderr, client, clk)
	}

	return app.Run(args)
}

func flags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:     "url, u",
			Usage:    "seed url to start from",
			Required: true,
		},
		cli.StringFlag{
			Name:     "output, o",
			Usage:    "path of the JSON file to write",
			Required: true,
		},
		cli.Float64Flag{
			Name:  "delay, d",
			Usage: "pause in seconds after each successful fetch",
		},
		cli.IntFlag{
			Name:  "max-iterations, m",
			Usage: "maximum number of fetch attempts",
			Value: config.DefaultMaxIterations,
		},
		cli.StringFlag{
			Name:  "mode",
			Usage: "crawl mode: site or secure",
			Value: config.ModeSite,
		},
		cli.StringFlag{
			Name:  "user-agent",
			Usage: "custom user agent",
			Value: config.DefaultUserAgent,
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
			Value: config.DefaultTimeout,
		},
		cli.BoolFlag{
			Name:  "indent",
			Usage: "indent the JSON output",
		},
		cli.BoolFlag{
			Name:  "progress",
			Usage: "show a progress bar on stderr",
		},
		cli.StringFlag{
			Name:  "history",
			Usage: "path of a SQLite journal recording fetches and links",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "path of a YAML defaults file (default: ./linkmap.yml, then $HOME/linkmap.yml)",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: trace, debug, info, warn, error",
			Value: config.DefaultLogLevel,
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to this file, with rotation",
		},
	}
}

func run(c *cli.Context, stderr io.Writer, client *http.Client, clk clock.Timer) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: stderr,
	}).With().Str("run_id", runID).Logger()

	crawlScope, err := buildScope(cfg)
	if err != nil {
		return err
	}

	collector := sink.NewCollector()

	client.Timeout = cfg.Timeout
	opts := crawler.Options{
		Seed:          cfg.Seed,
		MaxIterations: cfg.MaxIterations,
		Delay:         cfg.Delay,
		Timeout:       cfg.Timeout,
		UserAgent:     cfg.UserAgent,
		Scope:         crawlScope,
		Sink:          collector,
		Logger:        logger,
		HTTPClient:    client,
		Clock:         clk,
	}

	var journal *history.DB
	if cfg.HistoryPath != "" {
		journal, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := journal.Close(); closeErr != nil {
				logger.Warn().Err(closeErr).Msg("journal close failed")
			}
		}()

		if err := journal.BeginRun(runID, cfg.Seed, cfg.Mode, cfg.MaxIterations); err != nil {
			return err
		}

		opts.Journal = journal
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = newProgressBar(cfg.MaxIterations, stderr)
		opts.OnIteration = func(int, string) {
			_ = bar.Add(1)
		}
	}

	stats, err := crawler.Crawl(context.Background(), opts)
	if err != nil {
		return err
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if journal != nil {
		finishErr := journal.FinishRun(history.RunSummary{
			Iterations: stats.Iterations,
			Fetched:    stats.Fetched,
			Failed:     stats.Failed,
			Links:      stats.Links,
			Dropped:    stats.Dropped,
		})
		if finishErr != nil {
			logger.Warn().Err(finishErr).Msg("journal finish failed")
		}
	}

	if err := collector.WriteFile(cfg.Output, cfg.Indent); err != nil {
		return err
	}

	logger.Info().
		Int("iterations", stats.Iterations).
		Int("fetched", stats.Fetched).
		Int("failed", stats.Failed).
		Int("links", stats.Links).
		Int("dropped", stats.Dropped).
		Str("output", cfg.Output).
		Msg("crawl finished")

	return nil
}

// resolveConfig builds the run configuration from flags, then fills the gaps
// from a YAML defaults file. An explicit flag always wins over the file.
func resolveConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Config{
		Seed:          c.String("url"),
		Output:        c.String("output"),
		Mode:          c.String("mode"),
		Delay:         secondsToDuration(c.Float64("delay")),
		MaxIterations: c.Int("max-iterations"),
		UserAgent:     c.String("user-agent"),
		Timeout:       c.Duration("timeout"),
		Profile:       scope.Wikipedia,
		Indent:        c.Bool("indent"),
		Progress:      c.Bool("progress"),
		HistoryPath:   c.String("history"),
		LogLevel:      c.String("log-level"),
		LogFile:       c.String("log-file"),
	}

	if err := applyFile(c, &cfg); err != nil {
		return config.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func applyFile(c *cli.Context, cfg *config.Config) error {
	path := c.String("config")
	if path == "" {
		path = config.Find()
	}
	if path == "" {
		return nil
	}

	file, err := config.Load(path)
	if err != nil {
		return err
	}

	timeout, hasTimeout, err := file.TimeoutDuration()
	if err != nil {
		return err
	}

	if file.Mode != nil && !anySet(c, "mode") {
		cfg.Mode = *file.Mode
	}
	if file.Delay != nil && !anySet(c, "delay", "d") {
		cfg.Delay = secondsToDuration(*file.Delay)
	}
	if file.MaxIterations != nil && !anySet(c, "max-iterations", "m") {
		cfg.MaxIterations = *file.MaxIterations
	}
	if file.UserAgent != nil && !anySet(c, "user-agent") {
		cfg.UserAgent = *file.UserAgent
	}
	if hasTimeout && !anySet(c, "timeout") {
		cfg.Timeout = timeout
	}
	if file.Indent != nil && !anySet(c, "indent") {
		cfg.Indent = *file.Indent
	}
	if file.Progress != nil && !anySet(c, "progress") {
		cfg.Progress = *file.Progress
	}
	if file.History != nil && !anySet(c, "history") {
		cfg.HistoryPath = *file.History
	}
	if file.LogLevel != nil && !anySet(c, "log-level") {
		cfg.LogLevel = *file.LogLevel
	}
	if file.LogFile != nil && !anySet(c, "log-file") {
		cfg.LogFile = *file.LogFile
	}
	if file.Profile != nil {
		cfg.Profile = scope.Profile{
			Domain:     file.Profile.Domain,
			PathPrefix: file.Profile.PathPrefix,
		}
	}

	return nil
}

// anySet reports whether the flag was given under any of its names.
// cli.Context.IsSet looks up one name at a time, so aliases need a sweep.
func anySet(c *cli.Context, names ...string) bool {
	for _, name := range names {
		if c.IsSet(name) {
			return true
		}
	}

	return false
}

func buildScope(cfg config.Config) (crawler.Scope, error) {
	if cfg.Mode == config.ModeSecure {
		return scope.Secure{}, nil
	}

	site, err := cfg.Profile.ParseSeed(cfg.Seed)
	if err != nil {
		return nil, config.Wrap(err)
	}

	return site, nil
}

func newProgressBar(max int, out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("crawling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
