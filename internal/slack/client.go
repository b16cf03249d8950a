package slack

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ffaiyaz23/querywidget/internal/widget"
)

const (
	StreamModeUpdate = "update"
	StreamModeThread = "thread"

	defaultPostInterval = 50 * time.Millisecond
)

// API is the part of *slack.Client the relay needs.
type API interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessage(channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
}

// workItem is a single mention to process.
type workItem struct {
	ctx     context.Context
	channel string
	user    string
	query   string
}

// updateItem is a later display change for one mention's message.
type updateItem struct {
	display *messageDisplay
	text    string
	final   bool
}

// boolToInt helps record a boolean as an int attribute.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var tracer = otel.Tracer("querywidget/slack")

// Client orchestrates dispatcher → worker pool → poster. Each mention gets
// its own widget whose display is a Slack message.
type Client struct {
	api          API
	querier      widget.Querier
	workCh       chan workItem
	updateCh     chan updateItem
	poolSize     int
	streamMode   string
	postInterval time.Duration

	workers    sync.WaitGroup
	posterDone chan struct{}
}

// New constructs the Slack client pipeline. Call Start before dispatching.
func New(api API, querier widget.Querier, poolSize int, streamMode string) *Client {
	return &Client{
		api:          api,
		querier:      querier,
		workCh:       make(chan workItem, poolSize),
		updateCh:     make(chan updateItem, poolSize*2),
		poolSize:     poolSize,
		streamMode:   streamMode,
		postInterval: defaultPostInterval,
		posterDone:   make(chan struct{}),
	}
}

// Start fires up the poster and the worker pool.
func (c *Client) Start(ctx context.Context) {
	go func() {
		defer close(c.posterDone)
		c.startPoster(ctx)
	}()
	for i := 0; i < c.poolSize; i++ {
		c.workers.Add(1)
		go func() {
			defer c.workers.Done()
			c.startWorker(ctx)
		}()
	}
}

// Stop drains queued mentions and pending updates, then returns.
// No mention may be dispatched after Stop.
func (c *Client) Stop() {
	close(c.workCh)
	c.workers.Wait()
	close(c.updateCh)
	<-c.posterDone
}

// handleAppMention enqueues an AppMentionEvent into the pipeline with a tracing span.
func (c *Client) handleAppMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	ctx, span := tracer.Start(ctx, "ProcessAppMention",
		trace.WithAttributes(
			attribute.String("slack.user_id", ev.User),
			attribute.String("slack.channel_id", ev.Channel),
		),
	)
	defer span.End()

	query := ParseAppMentionText(ev.Text)

	zap.S().Infow("enqueued work",
		"trace_id", span.SpanContext().TraceID().String(),
		"span_id", span.SpanContext().SpanID().String(),
		"channel", ev.Channel,
		"user", ev.User,
	)

	// the request context ends with the HTTP response; keep only the span
	c.workCh <- workItem{
		ctx:     trace.ContextWithSpanContext(context.Background(), span.SpanContext()),
		channel: ev.Channel,
		user:    ev.User,
		query:   query,
	}
}

// startWorker pulls workItems and runs one widget submission per mention.
func (c *Client) startWorker(parentCtx context.Context) {
	for wi := range c.workCh {
		ctx := parentCtx
		if wi.ctx != nil {
			ctx = trace.ContextWithSpanContext(parentCtx, trace.SpanContextFromContext(wi.ctx))
		}
		ctx, span := tracer.Start(ctx, "CallBackend",
			trace.WithAttributes(attribute.String("backend.user_id", wi.user)),
		)

		display := &messageDisplay{client: c, channel: wi.channel}
		if err := widget.New(c.querier, display, nil).Submit(ctx, wi.query); err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}

// startPoster serializes display changes back to Slack, pacing the API calls.
func (c *Client) startPoster(ctx context.Context) {
	for ui := range c.updateCh {
		_, span := tracer.Start(ctx, "PostSlackUpdate",
			trace.WithAttributes(
				attribute.String("slack.channel_id", ui.display.channel),
				attribute.Int("chunk_final", boolToInt(ui.final)),
			),
		)
		if err := ui.display.deliver(ui.text); err != nil {
			span.RecordError(err)
			zap.S().Errorw("slack display update failed",
				"channel", ui.display.channel,
				"ts", ui.display.ts,
				"mode", c.streamMode,
				"error", err,
			)
		}
		span.End()
		time.Sleep(c.postInterval)
	}
}

// Handler returns the Events API endpoint. Only signed requests are accepted;
// URL verification is answered inline and app mentions are queued.
func (c *Client) Handler(signingSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, status, err := verifiedBody(r, signingSecret)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}

		evt, err := slackevents.ParseEvent(raw, slackevents.OptionNoVerifyToken())
		if err != nil {
			http.Error(w, "parse event error", http.StatusBadRequest)
			return
		}

		switch evt.Type {
		case slackevents.URLVerification:
			challenge, ok := evt.Data.(*slackevents.EventsAPIURLVerificationEvent)
			if !ok {
				http.Error(w, "malformed challenge", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(challenge.Challenge))
			return
		case slackevents.CallbackEvent:
			if ev, ok := evt.InnerEvent.Data.(*slackevents.AppMentionEvent); ok {
				c.handleAppMention(r.Context(), ev)
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

// verifiedBody reads the request body and checks it against the Slack
// signing secret, returning the status to answer with on failure.
func verifiedBody(r *http.Request, signingSecret string) ([]byte, int, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("read body error")
	}
	verifier, err := slack.NewSecretsVerifier(r.Header, signingSecret)
	if err != nil {
		return nil, http.StatusUnauthorized, errors.New("missing or stale signature headers")
	}
	if _, err := verifier.Write(raw); err != nil {
		return nil, http.StatusInternalServerError, errors.New("signature check error")
	}
	if err := verifier.Ensure(); err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid signature")
	}
	return raw, http.StatusOK, nil
}

// EventsHandler builds a started pipeline backed by the Slack Web API and
// returns its events handler together with the client for shutdown.
func EventsHandler(
	ctx context.Context,
	botToken, signingSecret string,
	poolSize int,
	streamMode string,
	querier widget.Querier,
) (http.HandlerFunc, *Client) {
	client := New(slack.New(botToken), querier, poolSize, streamMode)
	client.Start(ctx)
	return client.Handler(signingSecret), client
}
