package resolver

import (
	"net/http"

	"github.com/G-USI/wirecrab"
	"github.com/G-USI/wirecrab/wcerrors"
)

const (
	// DefaultMaxRefDepth is the default bound on nested $ref chains.
	// It stops very deep (but non-circular) chains from exhausting the stack.
	DefaultMaxRefDepth = 100

	// DefaultMaxFileSize is the default size limit, in bytes, for a single document.
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB
)

// Option is a function that configures a Resolver.
type Option func(*config) error

// config holds Resolver settings.
type config struct {
	logger     Logger
	fetcher    Fetcher
	httpClient *http.Client
	userAgent  string

	// Resource limits
	maxRefDepth int
	maxFileSize int64

	rebaseExternalRefs bool
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		logger:      NopLogger{},
		userAgent:   wirecrab.UserAgent(),
		maxRefDepth: DefaultMaxRefDepth,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithLogger sets the logger for resolution events.
// Default: NopLogger
func WithLogger(l Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return &wcerrors.ConfigError{Option: "WithLogger", Message: "logger cannot be nil"}
		}
		cfg.logger = l
		return nil
	}
}

// WithFetcher replaces the function used to retrieve URL documents.
// When set, WithHTTPClient and WithUserAgent have no effect.
func WithFetcher(f Fetcher) Option {
	return func(cfg *config) error {
		if f == nil {
			return &wcerrors.ConfigError{Option: "WithFetcher", Message: "fetcher cannot be nil"}
		}
		cfg.fetcher = f
		return nil
	}
}

// WithHTTPClient sets the client used by the default fetcher.
// If the client is nil, this option has no effect.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) error {
		if client != nil {
			cfg.httpClient = client
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent by the default fetcher.
// Default: "wirecrab/<version>"
func WithUserAgent(ua string) Option {
	return func(cfg *config) error {
		cfg.userAgent = ua
		return nil
	}
}

// WithMaxRefDepth bounds how many $ref nodes may be nested inside one
// another during expansion. Default: DefaultMaxRefDepth
func WithMaxRefDepth(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return &wcerrors.ConfigError{Option: "WithMaxRefDepth", Value: n, Message: "must be positive"}
		}
		cfg.maxRefDepth = n
		return nil
	}
}

// WithMaxFileSize bounds the size of any single loaded document.
// Default: DefaultMaxFileSize
func WithMaxFileSize(n int64) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return &wcerrors.ConfigError{Option: "WithMaxFileSize", Value: n, Message: "must be positive"}
		}
		cfg.maxFileSize = n
		return nil
	}
}

// WithRebaseExternalRefs controls which document nested references inside an
// external document are resolved against. When false (the default) every
// reference is resolved against the document expansion started from, so a
// "#/..." ref inside other.yaml still points into the root document. When
// true, references found in other.yaml are resolved against other.yaml.
func WithRebaseExternalRefs(enabled bool) Option {
	return func(cfg *config) error {
		cfg.rebaseExternalRefs = enabled
		return nil
	}
}
