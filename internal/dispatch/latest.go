package dispatch

// Latest is a capacity-1 channel where a new value replaces one the consumer
// has not read yet. It has exactly one producer and one consumer.
type Latest[T any] struct {
	ch chan T
}

// NewLatest creates an empty slot.
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// Publish stores v, replacing any pending value.
// Returns true if a pending value was superseded.
func (l *Latest[T]) Publish(v T) (superseded bool) {
	for {
		select {
		case l.ch <- v:
			return superseded
		default:
		}

		select {
		case <-l.ch:
			superseded = true
		default:
		}
	}
}

// Clear discards a pending value, if any.
// Returns true if one was discarded.
func (l *Latest[T]) Clear() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}

// C returns the channel the consumer receives from.
func (l *Latest[T]) C() <-chan T {
	return l.ch
}
