// Package widget implements the query widget: one input, one request, one
// rendered outcome. Front ends supply the Display and forward key presses.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ffaiyaz23/querywidget/internal/backend"
)

const (
	PromptText  = "Please enter a query."
	LoadingText = "Loading..."

	// EnterKey is the key name that triggers a submission.
	EnterKey = "Enter"
)

// ErrEmptyQuery is returned by Submit when the input trims to nothing.
var ErrEmptyQuery = errors.New("empty query")

var tracer = otel.Tracer("querywidget")

// Querier performs the outbound query. *backend.Client implements it.
type Querier interface {
	Query(ctx context.Context, query string) (backend.QueryResult, error)
}

// Display is the single text surface the widget renders into. Show may be
// called from several goroutines; the last call wins.
type Display interface {
	Show(state State, text string)
}

// Widget translates one user action into one query and one rendered outcome.
type Widget struct {
	client  Querier
	display Display
	logger  *zap.SugaredLogger
}

// New creates a widget rendering into display. A nil logger falls back to zap.S().
func New(client Querier, display Display, logger *zap.SugaredLogger) *Widget {
	if logger == nil {
		logger = zap.S()
	}
	return &Widget{client: client, display: display, logger: logger}
}

// Submit validates raw, queries the backend and renders the outcome, blocking
// until the request resolves. The returned error is already on the display.
func (w *Widget) Submit(ctx context.Context, raw string) error {
	query, err := w.begin(raw)
	if err != nil {
		return err
	}
	return w.resolve(ctx, query)
}

// HandleKey forwards a key press on the input. Only EnterKey submits, using
// value as it was at the time of the press; for other keys it returns nil.
// Validation and the loading state happen before HandleKey returns, the
// request runs in the background and its result is sent on the returned
// channel. Earlier requests are never cancelled.
func (w *Widget) HandleKey(ctx context.Context, key, value string) <-chan error {
	if key != EnterKey {
		return nil
	}

	done := make(chan error, 1)
	query, err := w.begin(value)
	if err != nil {
		done <- err
		close(done)
		return done
	}
	go func() {
		done <- w.resolve(ctx, query)
		close(done)
	}()
	return done
}

func (w *Widget) begin(raw string) (string, error) {
	query := strings.TrimFunc(raw, isInputSpace)
	if query == "" {
		w.display.Show(StatePrompt, PromptText)
		return "", ErrEmptyQuery
	}
	w.display.Show(StateLoading, LoadingText)
	return query, nil
}

func (w *Widget) resolve(ctx context.Context, query string) error {
	id := uuid.NewString()
	ctx, span := tracer.Start(ctx, "QueryWidget.Submit",
		trace.WithAttributes(
			attribute.String("submission.id", id),
			attribute.Int("query.length", len(query)),
		),
	)
	defer span.End()

	w.logger.Debugw("submitting query", "submission_id", id, "query", query)

	res, err := w.client.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("outcome", StateError.String()))
		w.logger.Warnw("query failed", "submission_id", id, "kind", Kind(err), "error", err)
		w.display.Show(StateError, FormatError(err))
		return err
	}

	span.SetAttributes(attribute.String("outcome", StateSuccess.String()))
	w.logger.Debugw("query resolved", "submission_id", id)
	w.display.Show(StateSuccess, FormatResult(res))
	return nil
}

// isInputSpace matches the whitespace a browser strips from form input:
// Zs, tab, vertical tab, form feed, BOM and the four line terminators.
// U+0085 is not part of that set.
func isInputSpace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', '\n', '\r', '\u2028', '\u2029', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// FormatResult renders a successful result.
func FormatResult(res backend.QueryResult) string {
	return fmt.Sprintf("Query: %s\n\nResponse:\n%s", res.Query, res.Response)
}

// FormatError renders any submission failure.
func FormatError(err error) string {
	return "Error: " + err.Error()
}
