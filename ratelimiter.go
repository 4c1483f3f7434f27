package funcz

import (
	"context"
	"errors"
	"sync"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/metricz"
	"golang.org/x/time/rate"
)

// RateLimitMode selects what a RateLimiter does when no token is
// available.
type RateLimitMode string

// Rate limiter modes.
const (
	// RateLimitWait blocks until a token is available or the context ends.
	RateLimitWait RateLimitMode = "wait"
	// RateLimitDrop fails immediately with ErrRateLimited.
	RateLimitDrop RateLimitMode = "drop"
)

// Metric keys for the RateLimiter connector.
const (
	RateLimiterAllowedTotal = metricz.Key("ratelimiter.allowed.total")
	RateLimiterDroppedTotal = metricz.Key("ratelimiter.dropped.total")
)

// RateLimiter admits values to its stage at a sustained rate with bursts,
// using a token bucket. It keeps state across calls, so create one per
// protected resource and share it.
//
// Example:
//
//	var apiLimit = funcz.NewRateLimiter("partner-api", 50, 10,
//	    funcz.Effect("post", postToPartner))
type RateLimiter[T any] struct {
	stage   Stage[T]
	name    Name
	limiter *rate.Limiter
	mode    RateLimitMode
	mu      sync.RWMutex
	clock   clockz.Clock
	metrics *metricz.Registry
}

// NewRateLimiter creates a RateLimiter in wait mode.
func NewRateLimiter[T any](name Name, ratePerSecond float64, burst int, stage Stage[T]) *RateLimiter[T] {
	if isNilStage(stage) {
		panic(nilOperation("NewRateLimiter"))
	}

	metrics := metricz.New()
	metrics.Counter(RateLimiterAllowedTotal)
	metrics.Counter(RateLimiterDroppedTotal)

	return &RateLimiter[T]{
		name:    name,
		stage:   stage,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		mode:    RateLimitWait,
		clock:   clockz.RealClock,
		metrics: metrics,
	}
}

// Accept implements Stage.
func (r *RateLimiter[T]) Accept(ctx context.Context, value T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.RLock()
	stage := r.stage
	mode := r.mode
	clock := r.clock
	r.mu.RUnlock()

	switch mode {
	case RateLimitDrop:
		if !r.limiter.AllowN(clock.Now(), 1) {
			r.metrics.Counter(RateLimiterDroppedTotal).Inc()
			return &Error[T]{
				Err:       ErrRateLimited,
				InputData: value,
				Path:      []Name{r.name},
				Timestamp: clock.Now(),
			}
		}
	default:
		if err := r.limiter.Wait(ctx); err != nil {
			return &Error[T]{
				Err:       err,
				InputData: value,
				Path:      []Name{r.name},
				Timeout:   errors.Is(err, context.DeadlineExceeded),
				Canceled:  errors.Is(err, context.Canceled),
				Timestamp: clock.Now(),
			}
		}
	}
	r.metrics.Counter(RateLimiterAllowedTotal).Inc()

	start := clock.Now()
	if err := stage.Accept(ctx, value); err != nil {
		return wrapError(err, r.name, value, clock.Now(), clock.Since(start))
	}
	return nil
}

// SetRate updates the sustained rate in tokens per second.
func (r *RateLimiter[T]) SetRate(ratePerSecond float64) *RateLimiter[T] {
	r.limiter.SetLimit(rate.Limit(ratePerSecond))
	return r
}

// SetBurst updates the bucket size.
func (r *RateLimiter[T]) SetBurst(burst int) *RateLimiter[T] {
	r.limiter.SetBurst(burst)
	return r
}

// SetMode switches between RateLimitWait and RateLimitDrop. Unknown modes
// are ignored.
func (r *RateLimiter[T]) SetMode(mode RateLimitMode) *RateLimiter[T] {
	if mode != RateLimitWait && mode != RateLimitDrop {
		return r
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = mode
	return r
}

// Rate returns the sustained rate.
func (r *RateLimiter[T]) Rate() float64 {
	return float64(r.limiter.Limit())
}

// Burst returns the bucket size.
func (r *RateLimiter[T]) Burst() int {
	return r.limiter.Burst()
}

// Mode returns the current mode.
func (r *RateLimiter[T]) Mode() RateLimitMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// WithClock sets the clock used for drop-mode admission and timestamps.
// Wait mode always waits in real time.
func (r *RateLimiter[T]) WithClock(clock clockz.Clock) *RateLimiter[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = clock
	return r
}

// Name returns the name of this connector.
func (r *RateLimiter[T]) Name() Name {
	return r.name
}

// Metrics returns the metrics registry for this connector.
func (r *RateLimiter[T]) Metrics() *metricz.Registry {
	return r.metrics
}
