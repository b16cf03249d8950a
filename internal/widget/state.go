package widget

import (
	"errors"

	"github.com/ffaiyaz23/querywidget/internal/backend"
)

// State is what the display currently shows.
type State int

const (
	StateIdle State = iota
	StatePrompt
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StatePrompt:
		return "prompt"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Resolved reports whether s is a final outcome of a request.
func (s State) Resolved() bool {
	return s == StateSuccess || s == StateError
}

// Kind classifies a submission error for logs. Users only ever see the message.
func Kind(err error) string {
	var reqErr *backend.RequestError
	var parseErr *backend.ParseError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "empty_input"
	case errors.As(err, &reqErr):
		return "request"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "network"
	}
}
