// Package loop serializes controller state changes the way a UI event loop
// would: every mutation and every render fan-out runs inside Do, one at a
// time. Do must never be called from inside Do, and nothing may block on the
// network or on a user prompt while inside it.
package loop

import "sync"

type Loop struct {
	mu sync.Mutex
}

func New() *Loop {
	return &Loop{}
}

// Do runs fn exclusively with respect to every other Do on the same loop.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}
