package model

import "time"

// Config is the tool-level configuration loaded from the user's config
// file. All fields are optional; zero values fall back to defaults.
type Config struct {
	// StorePath overrides the directory holding actions.json and
	// startup.json.
	StorePath string `yaml:"store_path,omitempty"`

	// WSLBinary overrides the wsl executable used by the dispatcher.
	WSLBinary string `yaml:"wsl_binary,omitempty"`

	// DefaultUser is used for the {{user}} token when the distribution
	// does not report one.
	DefaultUser string `yaml:"default_user,omitempty"`

	// DefaultTimeoutSec bounds startup steps that carry no timeout of
	// their own.
	DefaultTimeoutSec int `yaml:"default_timeout_sec,omitempty"`
}

// StepTimeout returns the configured default step deadline.
func (c *Config) StepTimeout() time.Duration {
	if c == nil || c.DefaultTimeoutSec <= 0 {
		return DefaultStepTimeout
	}
	return time.Duration(c.DefaultTimeoutSec) * time.Second
}
