// Package sink accumulates discovered links and writes the result file.
package sink

import (
	"encoding/json"
	"os"
)

// WriteError reports a result file that could not be created or written.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "failed to write file: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Collector folds (text, target) pairs into a flat mapping.
// Pairs sharing the same text overwrite each other; the last one wins.
type Collector struct {
	entries map[string]string
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{entries: map[string]string{}}
}

// Put records one link under its visible text.
func (c *Collector) Put(text, target string) {
	c.entries[text] = target
}

// Len returns the number of distinct texts collected.
func (c *Collector) Len() int {
	return len(c.entries)
}

// Map returns a copy of the collected mapping.
func (c *Collector) Map() map[string]string {
	entries := make(map[string]string, len(c.entries))
	for text, target := range c.entries {
		entries[text] = target
	}

	return entries
}

// WriteFile serializes the mapping as a single JSON object to path.
// The output always ends with a newline.
func (c *Collector) WriteFile(path string, indent bool) error {
	data, err := marshalEntries(c.entries, indent)
	if err != nil {
		return &WriteError{Err: err}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Err: err}
	}

	return nil
}

func marshalEntries(entries map[string]string, indent bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if indent {
		data, err = json.MarshalIndent(entries, "", "  ")
	} else {
		data, err = json.Marshal(entries)
	}

	if err != nil {
		return nil, err
	}

	return ensureNewline(data), nil
}

func ensureNewline(data []byte) []byte {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		return append(data, '\n')
	}

	return data
}
