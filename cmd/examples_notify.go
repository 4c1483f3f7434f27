package main

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/zoobzio/funcz"
)

// NotifyExample routes order notifications by channel, records priority
// orders and fans both out concurrently.
type NotifyExample struct{}

func (*NotifyExample) Name() string { return "notify" }

func (*NotifyExample) Description() string {
	return "Order notifications routed, filtered and fanned out"
}

type order struct {
	ID       string
	Channel  string
	Priority bool
}

type notifier struct {
	pipeline *funcz.Sequence[order]
	router   *funcz.Switch[order, string]
	priority *funcz.Filter[order]
	sent     atomic.Int64
	flagged  atomic.Int64
}

func newNotifier(out io.Writer) *notifier {
	n := &notifier{}
	send := func(channel string) funcz.Step[order] {
		return funcz.Effect(funcz.Name(channel), func(_ context.Context, o order) error {
			n.sent.Add(1)
			if out != nil {
				fmt.Fprintf(out, "    %s → %s\n", o.ID, channel)
			}
			return nil
		})
	}

	n.router = funcz.NewSwitch[order, string]("channel", func(_ context.Context, o order) string { return o.Channel }).
		AddRoute("email", send("email")).
		AddRoute("sms", send("sms"))

	n.priority = funcz.NewFilter[order]("priority",
		funcz.Predicate[order](func(o order) bool { return o.Priority }),
		funcz.Tap("flag", funcz.Consumer[order](func(order) { n.flagged.Add(1) })))

	n.pipeline = funcz.NewSequence[order]("order-placed",
		funcz.NewConcurrent[order]("fanout", n.router, n.priority),
	)
	return n
}

func (n *notifier) Close() {
	_ = n.pipeline.Close()
	_ = n.router.Close()
	_ = n.priority.Close()
}

func (e *NotifyExample) Demo(ctx context.Context, out io.Writer) error {
	header(out, "ORDER NOTIFICATIONS")
	fmt.Fprintln(out, "A Switch picks the channel, a Filter flags priority orders,")
	fmt.Fprintln(out, "and Concurrent runs both for every order.")

	n := newNotifier(out)
	defer n.Close()

	orders := []order{
		{ID: "A-1", Channel: "email"},
		{ID: "A-2", Channel: "sms", Priority: true},
		{ID: "A-3", Channel: "pigeon"},
	}
	accept := n.pipeline.Consumer(ctx)
	for _, o := range orders {
		if err := accept(o); err != nil {
			return err
		}
	}

	result(out, true, "%d sent, %d flagged, %.0f unrouted",
		n.sent.Load(), n.flagged.Load(), n.router.Metrics().Counter(funcz.SwitchUnroutedTotal).Value())
	return nil
}

func (*NotifyExample) Benchmark(b *testing.B) {
	n := newNotifier(nil)
	defer n.Close()
	ctx := context.Background()
	o := order{ID: "bench", Channel: "email", Priority: true}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = n.pipeline.Accept(ctx, o) //nolint:errcheck // benchmark ignores errors
	}
}
