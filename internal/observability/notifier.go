package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// SessionNotice describes a finished pomodoro session for notification.
type SessionNotice struct {
	TaskText  string
	SessionID string
	WasBreak  bool
	LongBreak bool
}

// Notifier delivers pomodoro completion notices to an external channel.
type Notifier interface {
	Notify(notices []SessionNotice) error
}

// webhookNotifier posts notices as JSON to a configured webhook URL.
type webhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier creates a Notifier that posts to the given webhook URL.
func NewWebhookNotifier(webhookURL string) Notifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type webhookPayload struct {
	Text string `json:"text"`
}

// Notify sends one message summarizing the given notices. It returns nil
// without making a request if the slice is empty.
func (n *webhookNotifier) Notify(notices []SessionNotice) error {
	if len(notices) == 0 {
		return nil
	}

	payload := webhookPayload{Text: buildNoticeText(notices)}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling notification: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func buildNoticeText(notices []SessionNotice) string {
	var buf bytes.Buffer
	for i, notice := range notices {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(noticeLine(notice))
	}
	return buf.String()
}

func noticeLine(notice SessionNotice) string {
	switch {
	case notice.WasBreak:
		return fmt.Sprintf("Break over, back to %q", notice.TaskText)
	case notice.LongBreak:
		return fmt.Sprintf("Focus session on %q complete. Take a long break (15 min).", notice.TaskText)
	default:
		return fmt.Sprintf("Focus session on %q complete. Take a short break (5 min).", notice.TaskText)
	}
}
