package tui

import "sync"

// statusNotifier keeps the latest toast for the status bar and wakes the
// program so it is drawn.
type statusNotifier struct {
	mu    sync.Mutex
	title string
	text  string
	isErr bool
	wake  func()
}

func (n *statusNotifier) Success(title, message string) { n.set(title, message, false) }

func (n *statusNotifier) Error(title, message string) { n.set(title, message, true) }

func (n *statusNotifier) set(title, message string, isErr bool) {
	n.mu.Lock()
	n.title, n.text, n.isErr = title, message, isErr
	n.mu.Unlock()
	if n.wake != nil {
		n.wake()
	}
}

func (n *statusNotifier) get() (title, text string, isErr bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.title, n.text, n.isErr
}
