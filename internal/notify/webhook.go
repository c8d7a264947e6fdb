// Package notify posts render lifecycle events to an operator-configured
// webhook.
package notify

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"encore-ai/log"
)

// Event is the webhook payload sent on every stage transition. EventID is
// unique per delivery so receivers can deduplicate retried posts.
type Event struct {
	EventID   string `json:"eventId"`
	TaskID    string `json:"taskId"`
	EpisodeID string `json:"episodeId"`
	Stage     string `json:"stage"`
	Status    int    `json:"status"`
	Message   string `json:"message,omitempty"`
}

// Notifier fires webhook events. A Notifier with an empty URL is valid
// and does nothing, so callers never branch on configuration.
type Notifier struct {
	url    string
	client *resty.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		url: webhookURL,
		client: resty.New().
			SetTimeout(10 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(2 * time.Second),
	}
}

// Notify posts the event. Delivery is best effort: a failed webhook is
// logged and swallowed, never failing the render it reports on.
func (n *Notifier) Notify(event Event) {
	if n == nil || n.url == "" {
		return
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	resp, err := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(n.url)
	if err != nil {
		log.GetLogger().Warn("webhook delivery failed",
			zap.Error(err),
			zap.String("task id", event.TaskID),
			zap.String("stage", event.Stage))
		return
	}
	if resp.StatusCode() >= 300 {
		log.GetLogger().Warn("webhook rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("task id", event.TaskID),
			zap.String("stage", event.Stage))
	}
}
