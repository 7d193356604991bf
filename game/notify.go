package game

import "sync"

// Notifier is a broadcast wake-up. Every waiter on Changed() wakes on the next Broadcast;
// waiters must re-read state afterwards because notifications coalesce.
type Notifier struct {
	mu      sync.Mutex
	ch      chan struct{}
	version uint64
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{})}
}

// Changed returns a channel that is closed by the next Broadcast.
// Fetch it before reading state so no commit can slip between the read and the wait.
func (n *Notifier) Changed() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}

func (n *Notifier) Broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.version++
	close(n.ch)
	n.ch = make(chan struct{})
}

// Version counts broadcasts so far.
func (n *Notifier) Version() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.version
}
