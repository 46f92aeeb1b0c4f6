package event

import "context"

// BusCapacity is the bounded channel size every simulation worker
// publishes onto (spec.md §5: producers block rather than grow memory
// without bound when a consumer falls behind).
const BusCapacity = 64

// Bus is a single-producer-friendly wrapper around a bounded event
// channel. Multiple producers (FoF child funds) may share one Bus; each
// holds its own reference and calls Publish independently, the way
// backgommon's runner hands callbacks to strategies. Exactly one owner
// calls Close, once every producer has finished publishing.
type Bus struct {
	ch chan Event
}

// NewBus allocates a Bus with the standard capacity.
func NewBus() *Bus {
	return &Bus{ch: make(chan Event, BusCapacity)}
}

// Publish sends e, blocking until the channel has room or ctx is done.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	select {
	case b.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events exposes the receive side for consumers to range/select over.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Close signals no further events will be published. Callers must
// ensure no concurrent Publish is in flight.
func (b *Bus) Close() {
	close(b.ch)
}
