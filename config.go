package stash

import "time"

// DefaultDomain is the platform domain probe URLs expand against.
const DefaultDomain = "xyzpulseinfra.com"

// Config holds the configuration for a Stash instance.
type Config struct {
	// Domain is the platform domain for probe URLs. Endpoints only store a
	// node name; the full URL is derived from it and this domain.
	Domain string

	// RequestTimeout is the HTTP timeout per upload or read attempt.
	RequestTimeout time.Duration

	// ShareConcurrency bounds the number of concurrent uploads in a share
	// fan-out.
	ShareConcurrency int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Domain:           DefaultDomain,
		RequestTimeout:   30 * time.Second,
		ShareConcurrency: 4,
	}
}
