// internal/link/bus.go
package link

import (
	"context"
	"sync"
)

// inboxCapacity bounds each endpoint; a full inbox drops like a busy radio.
const inboxCapacity = 64

// Bus is an in-memory broadcast medium. Every datagram sent by one endpoint
// is offered to every other joined endpoint.
type Bus struct {
	mu        sync.Mutex
	endpoints map[*Endpoint]struct{}

	// Drop, if set, is consulted per delivery; true discards the datagram
	// for that receiver.
	Drop func(to *Endpoint, data []byte) bool

	holding bool
	held    []heldFrame
}

type heldFrame struct {
	from *Endpoint
	data []byte
}

func NewBus() *Bus {
	return &Bus{endpoints: make(map[*Endpoint]struct{})}
}

// Join attaches a new endpoint to the medium.
func (b *Bus) Join() *Endpoint {
	ep := &Endpoint{
		bus:   b,
		inbox: make(chan []byte, inboxCapacity),
		done:  make(chan struct{}),
	}
	b.mu.Lock()
	b.endpoints[ep] = struct{}{}
	b.mu.Unlock()
	return ep
}

// Hold buffers every send until Release.
func (b *Bus) Hold() {
	b.mu.Lock()
	b.holding = true
	b.mu.Unlock()
}

// Release delivers held datagrams newest first, simulating reordering.
func (b *Bus) Release() {
	b.mu.Lock()
	held := b.held
	b.held = nil
	b.holding = false
	b.mu.Unlock()

	for i := len(held) - 1; i >= 0; i-- {
		b.deliver(held[i].from, held[i].data)
	}
}

func (b *Bus) send(from *Endpoint, data []byte) {
	frame := make([]byte, len(data))
	copy(frame, data)

	b.mu.Lock()
	if b.holding {
		b.held = append(b.held, heldFrame{from: from, data: frame})
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	b.deliver(from, frame)
}

func (b *Bus) deliver(from *Endpoint, frame []byte) {
	b.mu.Lock()
	targets := make([]*Endpoint, 0, len(b.endpoints))
	for ep := range b.endpoints {
		if ep != from {
			targets = append(targets, ep)
		}
	}
	drop := b.Drop
	b.mu.Unlock()

	for _, ep := range targets {
		if drop != nil && drop(ep, frame) {
			continue
		}
		out := make([]byte, len(frame))
		copy(out, frame)
		select {
		case ep.inbox <- out:
		default:
		}
	}
}

func (b *Bus) leave(ep *Endpoint) {
	b.mu.Lock()
	delete(b.endpoints, ep)
	b.mu.Unlock()
}

// Endpoint is one node attached to a Bus.
type Endpoint struct {
	bus   *Bus
	inbox chan []byte

	once sync.Once
	done chan struct{}
}

func (e *Endpoint) Send(data []byte) error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}
	e.bus.send(e, data)
	return nil
}

func (e *Endpoint) Listen(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return ErrClosed
		case data := <-e.inbox:
			h(data)
		}
	}
}

func (e *Endpoint) Close() error {
	e.once.Do(func() {
		e.bus.leave(e)
		close(e.done)
	})
	return nil
}
