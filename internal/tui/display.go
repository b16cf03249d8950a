package tui

import (
	"sync"

	"github.com/ffaiyaz23/querywidget/internal/widget"
)

// display is the results pane. Show is called from request goroutines; the
// model reads it on every View.
type display struct {
	mu    sync.RWMutex
	state widget.State
	text  string
}

func (d *display) Show(state widget.State, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state, d.text = state, text
}

func (d *display) current() (widget.State, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state, d.text
}
