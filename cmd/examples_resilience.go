package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/zoobzio/funcz"
)

// ResilienceExample delivers payments through a flaky provider guarded by
// retry, a circuit breaker and a rate limiter, with a queue as fallback.
type ResilienceExample struct{}

func (*ResilienceExample) Name() string { return "resilience" }

func (*ResilienceExample) Description() string {
	return "Retry, circuit breaker, rate limiter and fallback"
}

var errProviderDown = errors.New("provider unavailable")

type payment struct {
	ID     string
	Amount int
}

type gateway struct {
	route    *funcz.Fallback[payment]
	retry    *funcz.Retry[payment]
	breaker  *funcz.CircuitBreaker[payment]
	limiter  *funcz.RateLimiter[payment]
	charged  atomic.Int64
	queued   atomic.Int64
	down     atomic.Bool
	attempts atomic.Int64
}

func newGateway(clock clockz.Clock) *gateway {
	g := &gateway{}
	provider := funcz.Effect("provider", func(context.Context, payment) error {
		g.attempts.Add(1)
		if g.down.Load() {
			return errProviderDown
		}
		g.charged.Add(1)
		return nil
	})
	queue := funcz.Tap("queue", funcz.Consumer[payment](func(payment) { g.queued.Add(1) }))

	g.retry = funcz.NewRetry[payment]("retry", provider, 3).WithClock(clock)
	g.breaker = funcz.NewCircuitBreaker[payment]("breaker", g.retry, 2, time.Minute).WithClock(clock)
	g.limiter = funcz.NewRateLimiter[payment]("limit", 1000, 100, g.breaker).
		SetMode(funcz.RateLimitDrop).
		WithClock(clock)
	g.route = funcz.NewFallback[payment]("charge", g.limiter, queue)
	return g
}

func (g *gateway) Close() {
	_ = g.route.Close()
	_ = g.breaker.Close()
	_ = g.retry.Close()
}

func (e *ResilienceExample) Demo(ctx context.Context, out io.Writer) error {
	header(out, "RESILIENT PAYMENTS")
	fmt.Fprintln(out, "Fallback(RateLimiter(CircuitBreaker(Retry(provider))), queue)")

	clock := clockz.NewFakeClock()
	clock.Advance(time.Hour) // full bucket
	g := newGateway(clock)
	defer g.Close()

	step := func(label string, p payment) error {
		if err := g.route.Accept(ctx, p); err != nil {
			result(out, false, "%s: %v", label, err)
			return err
		}
		result(out, true, "%s: breaker %s, charged %d, queued %d",
			label, g.breaker.State(), g.charged.Load(), g.queued.Load())
		return nil
	}

	if err := step("healthy provider", payment{ID: "p1", Amount: 10}); err != nil {
		return err
	}
	g.down.Store(true)
	for i, id := range []string{"p2", "p3", "p4"} {
		if err := step(fmt.Sprintf("outage %d", i+1), payment{ID: id, Amount: 10}); err != nil {
			return err
		}
	}
	g.down.Store(false)
	clock.Advance(time.Minute + time.Second)
	if err := step("after reset timeout", payment{ID: "p5", Amount: 10}); err != nil {
		return err
	}

	fmt.Fprintf(out, "  %sprovider attempts: %d%s\n", colorGray, g.attempts.Load(), colorReset)
	return nil
}

func (*ResilienceExample) Benchmark(b *testing.B) {
	g := newGateway(clockz.RealClock)
	defer g.Close()
	g.limiter.SetRate(1e9).SetBurst(1 << 30)
	ctx := context.Background()
	p := payment{ID: "bench", Amount: 1}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.route.Accept(ctx, p) //nolint:errcheck // benchmark ignores errors
	}
}
