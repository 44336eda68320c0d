package mail

import (
	"context"
	"log"
	"sync"
	"time"
)

// Dispatcher sends messages in the background. Callers never wait on delivery;
// failures are logged and dropped.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher wraps sender. Each send is bounded by timeout.
func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{sender: sender, timeout: timeout}
}

// Dispatch queues msg for delivery and returns immediately. Messages
// dispatched after Close are dropped with a log line.
func (d *Dispatcher) Dispatch(msg Message) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.Printf("mail dispatch dropped after shutdown: to=%s subject=%q", msg.To, msg.Subject)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, msg); err != nil {
			log.Printf("mail dispatch failed: to=%s subject=%q: %v", msg.To, msg.Subject, err)
		}
	}()
}

// Close stops accepting messages and waits for in-flight sends or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
