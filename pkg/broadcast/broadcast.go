package broadcast

import (
	"context"
	"sync"
)

// Subscriber receives broadcast messages until closed.
type Subscriber[T any] interface {
	// C returns the delivery channel. It is closed when the subscription ends.
	C() <-chan T
	Close() error
}

// Broadcaster publishes messages to every active subscriber.
type Broadcaster[T any] interface {
	Subscribe(ctx context.Context) Subscriber[T]
	Broadcast(ctx context.Context, msg T) error
	Close() error
}

type subscriber[T any] struct {
	ch     chan T
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
	detach func()
}

func (s *subscriber[T]) C() <-chan T { return s.ch }

func (s *subscriber[T]) Close() error {
	s.once.Do(func() {
		if s.detach != nil {
			s.detach()
		}
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		close(s.done)
	})
	return nil
}

// send reports whether msg was buffered.
func (s *subscriber[T]) send(msg T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
