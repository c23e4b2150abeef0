package duel

import "sync"

// DefaultOutboxSize matches the per-connection buffer the clients were
// built against.
const DefaultOutboxSize = 16

// Outbox is a player's bounded outbound queue. Send never blocks: when the
// consumer lags and the buffer is full, the oldest unread message is dropped
// so a slow client cannot stall its opponent's game.
type Outbox struct {
	mu      sync.Mutex
	ch      chan ServerMessage
	closed  bool
	dropped int
}

func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	return &Outbox{ch: make(chan ServerMessage, size)}
}

// C is drained by the connection's writer. It is closed by Close.
func (o *Outbox) C() <-chan ServerMessage {
	return o.ch
}

// Send queues msg and reports false if the outbox is closed.
func (o *Outbox) Send(msg ServerMessage) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false
	}
	for {
		select {
		case o.ch <- msg:
			return true
		default:
		}
		// Full: evict the oldest. The reader may have drained it already.
		select {
		case <-o.ch:
			o.dropped++
		default:
		}
	}
}

// Dropped is the number of messages evicted so far.
func (o *Outbox) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

// Closed reports whether the owning connection has gone away.
func (o *Outbox) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Close is idempotent. Messages already queued stay readable.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.ch)
}
