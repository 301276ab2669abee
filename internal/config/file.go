package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// File carries optional defaults loaded from a YAML file.
// Nil fields leave the built-in and flag defaults untouched.
type File struct {
	Mode          *string      `yaml:"mode"`
	Delay         *float64     `yaml:"delay"`
	MaxIterations *int         `yaml:"max_iterations"`
	UserAgent     *string      `yaml:"user_agent"`
	Timeout       *string      `yaml:"timeout"`
	Indent        *bool        `yaml:"indent"`
	Progress      *bool        `yaml:"progress"`
	History       *string      `yaml:"history"`
	LogLevel      *string      `yaml:"log_level"`
	LogFile       *string      `yaml:"log_file"`
	Profile       *FileProfile `yaml:"profile"`
}

// FileProfile overrides the site profile.
type FileProfile struct {
	Domain     string `yaml:"domain"`
	PathPrefix string `yaml:"path_prefix"`
}

// Load reads a YAML defaults file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, Errorf("unable to read config file %s: %v", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, Errorf("unable to parse config file %s: %v", path, err)
	}

	return file, nil
}

// Find returns the path of a defaults file in the current directory or the
// user's home directory, or "" when there is none.
func Find() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}

// TimeoutDuration parses the timeout field when present.
func (f File) TimeoutDuration() (time.Duration, bool, error) {
	if f.Timeout == nil {
		return 0, false, nil
	}

	parsed, err := time.ParseDuration(*f.Timeout)
	if err != nil {
		return 0, false, Errorf("invalid timeout %q in config file: %v", *f.Timeout, err)
	}

	return parsed, true, nil
}
