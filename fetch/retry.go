package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/pevans/khabar/logging"
)

// ErrRetriesExhausted is returned when every attempt for a URL failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// JitterBackOff waits 2^n units plus a uniform jitter in [0,1) units before
// retry n+1, where n counts from zero.
type JitterBackOff struct {
	Unit   time.Duration
	Jitter func() float64

	attempt int
}

// NextBackOff implements backoff.BackOff.
func (b *JitterBackOff) NextBackOff() time.Duration {
	jitter := 0.0
	if b.Jitter != nil {
		jitter = b.Jitter()
	}
	wait := (math.Pow(2, float64(b.attempt)) + jitter) * float64(b.Unit)
	b.attempt++
	return time.Duration(wait)
}

// Reset implements backoff.BackOff.
func (b *JitterBackOff) Reset() {
	b.attempt = 0
}

// RetryHook is called before each backoff sleep.
type RetryHook func(url string, attempt int, wait time.Duration)

// Retrier wraps a Getter with a bounded number of attempts and exponential
// backoff between them.
type Retrier struct {
	getter     Getter
	maxRetries int
	unit       time.Duration
	jitter     func() float64
	logger     *slog.Logger
	onRetry    RetryHook
}

// RetryOption configures a Retrier.
type RetryOption func(*Retrier)

// WithBackoffUnit sets the length of one backoff unit (default one second).
func WithBackoffUnit(unit time.Duration) RetryOption {
	return func(r *Retrier) { r.unit = unit }
}

// WithJitter sets the source of the [0,1) jitter added to each backoff.
func WithJitter(jitter func() float64) RetryOption {
	return func(r *Retrier) { r.jitter = jitter }
}

// WithLogger sets the logger for attempt warnings and exhaustion errors.
func WithLogger(logger *slog.Logger) RetryOption {
	return func(r *Retrier) { r.logger = logger }
}

// WithRetryHook registers a function called before every backoff sleep.
func WithRetryHook(hook RetryHook) RetryOption {
	return func(r *Retrier) { r.onRetry = hook }
}

// NewRetrier wraps getter. maxRetries is the total number of attempts; values
// below one mean a single attempt.
func NewRetrier(getter Getter, maxRetries int, opts ...RetryOption) *Retrier {
	if maxRetries < 1 {
		maxRetries = 1
	}

	r := &Retrier{
		getter:     getter,
		maxRetries: maxRetries,
		unit:       time.Second,
		jitter:     rand.Float64,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDefault(r.logger)

	return r
}

// Fetch fetches url, retrying failed attempts. Each failed attempt is logged
// at warn level; once every attempt has failed the error is logged and
// returned wrapped in ErrRetriesExhausted. Callers skip the unit of work on
// error rather than aborting.
func (r *Retrier) Fetch(ctx context.Context, url string) ([]byte, error) {
	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		body, err := r.getter.Fetch(ctx, url)
		if err != nil {
			r.logger.Warn("request failed",
				"url", url,
				"attempt", attempt,
				"max_retries", r.maxRetries,
				"error", err)
			return nil, err
		}
		return body, nil
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&JitterBackOff{Unit: r.unit, Jitter: r.jitter}),
		backoff.WithMaxTries(uint(r.maxRetries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(_ error, wait time.Duration) {
			if r.onRetry != nil {
				r.onRetry(url, attempt, wait)
			}
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch of %s cancelled: %w", url, ctxErr)
		}
		r.logger.Error("giving up on request",
			"url", url,
			"attempts", attempt,
			"error", err)
		return nil, fmt.Errorf("%w for %s after %d attempts: %w", ErrRetriesExhausted, url, attempt, err)
	}

	return body, nil
}
