package services

import (
	"sync"
)

// EventLoop serializes every mutation of a map session. Handlers, timers and
// network completions all enter through Do, so components behind it never
// need their own locks. Do must not be called from inside another Do.
type EventLoop struct {
	mu     sync.Mutex
	closed bool
}

// NewEventLoop creates an open event loop
func NewEventLoop() *EventLoop {
	return &EventLoop{}
}

// Do runs fn with exclusive access. It reports false when the loop is closed
// and fn was dropped.
func (l *EventLoop) Do(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	fn()
	return true
}

// Close runs fn as the final task and drops everything posted afterwards.
func (l *EventLoop) Close(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if fn != nil {
		fn()
	}
	l.closed = true
}
