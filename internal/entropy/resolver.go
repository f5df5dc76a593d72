package entropy

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/petasbytes/entropy-agent/internal/metrics"
)

// DefaultEndpoint is the ANU quantum random number JSON API.
const DefaultEndpoint = "https://qrng.anu.edu.au/API/jsonI.php"

// Source tags where a Result's value came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Result is one resolved value. RawSample is set only for SourceRemote and
// holds the byte received before normalization.
type Result struct {
	Value     int    `json:"value"`
	Source    Source `json:"source"`
	RawSample *int   `json:"raw_sample,omitempty"`
}

// Config controls the remote attempt.
type Config struct {
	Endpoint   string        `yaml:"endpoint" env:"AGT_ENTROPY_ENDPOINT"`
	Timeout    time.Duration `yaml:"timeout" env:"AGT_ENTROPY_TIMEOUT"`
	Retries    int           `yaml:"retries" env:"AGT_ENTROPY_RETRIES"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"AGT_ENTROPY_RETRY_DELAY"`
}

// DefaultConfig returns a single 5s attempt against DefaultEndpoint.
func DefaultConfig() Config {
	return Config{
		Endpoint:   DefaultEndpoint,
		Timeout:    5 * time.Second,
		Retries:    0,
		RetryDelay: 250 * time.Millisecond,
	}
}

// Validate checks c for values the resolver cannot run with.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("entropy: endpoint is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("entropy: timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("entropy: retries must not be negative, got %d", c.Retries)
	}
	if c.Retries > 0 && c.RetryDelay <= 0 {
		return fmt.Errorf("entropy: retry delay must be positive, got %s", c.RetryDelay)
	}
	return nil
}

// Resolver produces Results. It holds no mutable state and is safe to share.
type Resolver struct {
	cfg        Config
	requestURL string
	client     *http.Client
	random     io.Reader
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the client used for the remote attempt.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithRandom replaces the local random reader. It defaults to crypto/rand.Reader.
func WithRandom(rd io.Reader) Option {
	return func(r *Resolver) { r.random = rd }
}

// WithLogger sets the logger receiving status lines.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithMetrics records resolutions and remote failures on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New validates cfg and builds a Resolver.
func New(cfg Config, opts ...Option) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("entropy: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("entropy: endpoint %q must be http or https", cfg.Endpoint)
	}
	q := u.Query()
	q.Set("length", "1")
	q.Set("type", "uint8")
	u.RawQuery = q.Encode()

	r := &Resolver{
		cfg:        cfg,
		requestURL: u.String(),
		random:     rand.Reader,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		// One connection per call; nothing is pooled between resolutions.
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.DisableKeepAlives = true
		r.client = &http.Client{Transport: tr}
	}
	return r, nil
}

// Resolve returns a value in [low, high]. The only error is ErrInvalidRange;
// remote failures degrade to the local source.
func (r *Resolver) Resolve(ctx context.Context, low, high int) (Result, error) {
	n, err := Range{Low: low, High: high}.Size()
	if err != nil {
		return Result{}, err
	}

	r.log.Info("contacting remote entropy source", zap.String("endpoint", r.cfg.Endpoint))
	out := r.remote(ctx)
	if out.ok() {
		raw := out.sample
		value := normalize(raw, low, n)
		r.log.Info("remote sample normalized", zap.Int("raw_sample", raw), zap.Int("value", value))
		r.metrics.ObserveResolution(string(SourceRemote))
		return Result{Value: value, Source: SourceRemote, RawSample: &raw}, nil
	}

	r.log.Warn("remote entropy unavailable, switching to local source",
		zap.String("reason", string(out.err.Reason)), zap.Error(out.err.Err))
	value := low + r.drawLocal(n)
	r.log.Info("local entropy drawn", zap.Int("value", value))
	r.metrics.ObserveResolution(string(SourceLocal))
	return Result{Value: value, Source: SourceLocal}, nil
}

// remote makes one attempt plus cfg.Retries more, returning the last outcome.
func (r *Resolver) remote(ctx context.Context) remoteOutcome {
	if r.cfg.Retries == 0 {
		out := r.fetchRemote(ctx)
		if !out.ok() {
			r.metrics.ObserveRemoteFailure(string(out.err.Reason))
		}
		return out
	}

	var out remoteOutcome
	attempt := 0
	b := retry.WithMaxRetries(uint64(r.cfg.Retries), retry.NewConstant(r.cfg.RetryDelay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		out = r.fetchRemote(ctx)
		if out.ok() {
			return nil
		}
		r.metrics.ObserveRemoteFailure(string(out.err.Reason))
		r.log.Debug("remote entropy attempt failed", zap.Int("attempt", attempt), zap.Error(out.err))
		return retry.RetryableError(out.err)
	})
	if attempt == 0 {
		// ctx ended before the first attempt was made.
		if err == nil {
			err = context.Cause(ctx)
		}
		out = remoteFailed(classify(err), err)
		r.metrics.ObserveRemoteFailure(string(out.err.Reason))
	}
	return out
}

// drawLocal returns a uniform integer in [0, n).
func (r *Resolver) drawLocal(n int) int {
	bound := big.NewInt(int64(n))
	v, err := rand.Int(r.random, bound)
	if err != nil {
		r.log.Warn("local random reader failed, using crypto/rand", zap.Error(err))
		// crypto/rand.Reader does not fail on supported platforms.
		if v, err = rand.Int(rand.Reader, bound); err != nil {
			panic(fmt.Sprintf("entropy: crypto/rand: %v", err))
		}
	}
	return int(v.Int64())
}
