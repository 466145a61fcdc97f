package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/traindesk/traindesk/internal/config"
)

// Client posts staff notifications to the configured webhook. A missing
// webhook URL disables sending without erroring, so callers can fire and
// forget.
type Client struct {
	webhookURL string
	httpc      *http.Client
}

func NewClient() *Client {
	return &Client{
		webhookURL: config.C.StaffWebhookURL,
		httpc:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Enabled() bool { return c.webhookURL != "" }

func (c *Client) Send(text string) error {
	if !c.Enabled() {
		return nil
	}
	b, _ := json.Marshal(map[string]any{"text": text})
	req, _ := http.NewRequest("POST", c.webhookURL, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("staff webhook: %s", resp.Status)
	}
	return nil
}
