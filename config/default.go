package config

import "time"

const (
	DefaultTimeout          = 30 * time.Second
	DefaultConcurrency      = 4
	DefaultMaxRetries       = 2
	DefaultMinServerVersion = "2.0.0"
)

// GetDefault returns the default configuration. Policy flags are left nil,
// which the accessors in policy.go treat as enabled.
func GetDefault() Config {
	return Config{
		Concurrency:      DefaultConcurrency,
		Timeout:          DefaultTimeout.String(),
		MaxRetries:       Int(DefaultMaxRetries),
		MinServerVersion: DefaultMinServerVersion,
	}
}
