// Package config resolves and validates the crawl configuration.
package config

import (
	"fmt"
	"time"

	"github.com/IDilettant/linkmap/internal/scope"
)

// Crawl modes.
const (
	ModeSite   = "site"
	ModeSecure = "secure"
)

// Defaults applied when neither flags nor a config file say otherwise.
const (
	DefaultMaxIterations = 1000
	DefaultUserAgent     = "linkmap/1.0"
	DefaultTimeout       = 15 * time.Second
	DefaultLogLevel      = "info"
)

// FileName is the defaults file looked up when --config is not given.
const FileName = "linkmap.yml"

// Error reports configuration the crawl cannot start with.
type Error struct {
	msg string
	err error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// Errorf builds an Error from a format string.
func Errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error keeping err as the cause.
func Wrap(err error) *Error {
	return &Error{msg: err.Error(), err: err}
}

// Config is the immutable snapshot of one crawl run.
type Config struct {
	Seed          string
	Output        string
	Mode          string
	Delay         time.Duration
	MaxIterations int
	UserAgent     string
	Timeout       time.Duration
	Profile       scope.Profile
	Indent        bool
	Progress      bool
	HistoryPath   string
	LogLevel      string
	LogFile       string
}

// Validate checks the snapshot before the crawl starts.
func (c Config) Validate() error {
	if c.Seed == "" {
		return Errorf("seed url is required")
	}
	if c.Output == "" {
		return Errorf("output path is required")
	}
	if c.Mode != ModeSite && c.Mode != ModeSecure {
		return Errorf("unknown mode %q: want %q or %q", c.Mode, ModeSite, ModeSecure)
	}
	if c.MaxIterations <= 0 {
		return Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Delay < 0 {
		return Errorf("delay must not be negative, got %s", c.Delay)
	}
	if c.Timeout < 0 {
		return Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Mode == ModeSite && (c.Profile.Domain == "" || c.Profile.PathPrefix == "") {
		return Errorf("site profile needs a domain and a path prefix")
	}

	return nil
}
