package slack

import (
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/ffaiyaz23/querywidget/internal/widget"
)

// messageDisplay renders a widget into one Slack message. The first text is
// posted synchronously to learn the message timestamp; later texts are queued
// for the poster so they reach Slack in order.
type messageDisplay struct {
	client  *Client
	channel string
	ts      string
}

func (d *messageDisplay) Show(state widget.State, text string) {
	if d.ts == "" {
		channelID, ts, err := d.client.api.PostMessage(d.channel, slack.MsgOptionText(text, false))
		if err != nil {
			zap.S().Errorw("failed to post placeholder", "channel", d.channel, "error", err)
			return
		}
		d.channel, d.ts = channelID, ts
		return
	}
	d.client.updateCh <- updateItem{display: d, text: text, final: state.Resolved()}
}

// deliver pushes a later text: in thread mode as a reply under the first
// message, otherwise by editing the first message in place.
func (d *messageDisplay) deliver(text string) error {
	if d.client.streamMode == StreamModeThread {
		_, _, err := d.client.api.PostMessage(d.channel,
			slack.MsgOptionText(text, false),
			slack.MsgOptionTS(d.ts),
		)
		return err
	}
	_, _, _, err := d.client.api.UpdateMessage(d.channel, d.ts, slack.MsgOptionText(text, false))
	return err
}
