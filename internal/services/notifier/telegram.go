package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Telegram pushes messages through the Telegram Bot API.
type Telegram struct {
	// BaseURL is the Bot API host; tests point it at a local server.
	BaseURL string

	token      string
	chatID     string
	httpClient *http.Client
}

// NewTelegram creates a Telegram channel for the given bot token and
// chat.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		BaseURL: defaultTelegramAPI,
		token:   token,
		chatID:  chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name implements Channel.
func (t *Telegram) Name() string {
	return "telegram"
}

// Send implements Channel.
func (t *Telegram) Send(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    message,
	})
	if err != nil {
		return errors.Wrap(err, "marshal telegram payload")
	}

	reqURL := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "telegram request failed")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("telegram api responded with status %d", resp.StatusCode)
	}
	return nil
}
