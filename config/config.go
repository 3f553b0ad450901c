package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/blang/semver/v4"
	"github.com/imdario/mergo"
)

type Config struct {
	Verbose           bool       `json:"verbose,omitempty" toml:"verbose"`
	Quiet             bool       `json:"quiet,omitempty" toml:"quiet"`
	ServerURL         string     `json:"server_url,omitempty" toml:"server_url"`
	Username          string     `json:"username,omitempty" toml:"username"`
	Password          string     `json:"password,omitempty" toml:"password"`
	APIToken          string     `json:"api_token,omitempty" toml:"api_token"`
	RequireReference  *bool      `json:"require_review_request,omitempty" toml:"require_review_request"`
	DeclineUnapproved *bool      `json:"decline_unapproved_push,omitempty" toml:"decline_unapproved_push"`
	Branches          []string   `json:"branches,omitempty" toml:"branches"`
	Concurrency       int        `json:"concurrency,omitempty" toml:"concurrency"`
	Timeout           string     `json:"timeout,omitempty" toml:"timeout"`
	MaxRetries        *int       `json:"max_retries,omitempty" toml:"max_retries"`
	MinServerVersion  string     `json:"min_server_version,omitempty" toml:"min_server_version"`
	SkipVersionCheck  *bool      `json:"skip_version_check,omitempty" toml:"skip_version_check"`
	ReportTemplate    string     `json:"report_template,omitempty" toml:"report_template"`
	Term              TerminalIO `json:"-" toml:"-"`
}

func New(overrides *Config) Config {
	return NewWithTerminalIO(overrides, nil)
}

func NewWithTerminalIO(overrides *Config, termio *TerminalIO) Config {
	cfg := GetDefault()
	if termio == nil {
		termio = &DefaultTermIO
	}
	cfg.Term = *termio

	if overrides != nil {
		if err := Merge(&cfg, overrides); err != nil {
			panic(err)
		}
	}
	return cfg
}

// Merge applies each layer onto cfg in order. Only non-empty fields of a
// layer override cfg, so a later layer wins over an earlier one.
func Merge(cfg *Config, layers ...*Config) error {
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		// mergo merges through pointers and skips zero values, so fields
		// where false or 0 is meaningful are copied by hand.
		l := *layer
		requireRef, declineUnapproved, skipVersion := l.RequireReference, l.DeclineUnapproved, l.SkipVersionCheck
		maxRetries := l.MaxRetries
		l.RequireReference, l.DeclineUnapproved, l.SkipVersionCheck = nil, nil, nil
		l.MaxRetries = nil
		if err := mergo.Merge(cfg, l, mergo.WithOverride); err != nil {
			return fmt.Errorf("config: merge: %w", err)
		}
		if requireRef != nil {
			cfg.RequireReference = Bool(*requireRef)
		}
		if declineUnapproved != nil {
			cfg.DeclineUnapproved = Bool(*declineUnapproved)
		}
		if skipVersion != nil {
			cfg.SkipVersionCheck = Bool(*skipVersion)
		}
		if maxRetries != nil {
			cfg.MaxRetries = Int(*maxRetries)
		}
	}
	return nil
}

func (c Config) Validate() error {
	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			return fmt.Errorf("config: invalid server_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("config: server_url must be an http(s) URL, got %q", c.ServerURL)
		}
		if u.Host == "" {
			return fmt.Errorf("config: server_url %q has no host", c.ServerURL)
		}
	}
	if c.Password != "" && c.Username == "" {
		return errors.New("config: password is set but username is not")
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("config: invalid timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
		}
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config: concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.MaxRetries != nil && *c.MaxRetries < 0 {
		return fmt.Errorf("config: max_retries must not be negative, got %d", *c.MaxRetries)
	}
	if c.MinServerVersion != "" {
		if _, err := semver.ParseTolerant(c.MinServerVersion); err != nil {
			return fmt.Errorf("config: invalid min_server_version: %w", err)
		}
	}
	if c.Verbose && c.Quiet {
		return errors.New("config: verbose and quiet are mutually exclusive")
	}
	return nil
}

// GetTimeout returns the per-request timeout for the review server.
func (c Config) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// GetMaxRetries returns how often a transient server error is retried.
func (c Config) GetMaxRetries() int {
	if c.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.MaxRetries
}

func (c Config) SkipsVersionCheck() bool {
	return c.SkipVersionCheck != nil && *c.SkipVersionCheck
}

func (c Config) GetConcurrency() int {
	if c.Concurrency <= 0 {
		return 1
	}
	return c.Concurrency
}

// Redacted returns a copy of the config with credentials scrubbed, suitable
// for printing.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "xxxxxx"
	}
	if c.APIToken != "" {
		c.APIToken = "xxxxxx"
	}
	return c
}

func (c Config) Printf(msg string, args ...interface{}) {
	if c.Quiet {
		return
	}
	fmt.Fprintf(c.Term.Stdout, msg+"\n", args...)
}

func (c Config) Errorf(msg string, args ...interface{}) {
	fmt.Fprintf(c.Term.Stderr, msg+"\n", args...)
}

func (c Config) Debugf(msg string, args ...interface{}) {
	if !c.Verbose {
		return
	}
	c.Printf(msg, args...)
}
