package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/traindesk/traindesk/internal/config"
	"github.com/traindesk/traindesk/internal/services"
)

// Client sends outbound customer mail through an HTTP mail provider. An
// empty MAIL_API_URL disables sending, which keeps local development and
// tests quiet. The fulfillment machine only names which template applies;
// this package owns subjects, bodies and the provider call.
type Client struct {
	apiURL string
	apiKey string
	from   string
	httpc  *http.Client
}

func NewClient() *Client {
	return &Client{
		apiURL: config.C.MailAPIURL,
		apiKey: config.C.MailAPIKey,
		from:   config.C.MailFrom,
		httpc:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Enabled() bool { return c.apiURL != "" }

func (c *Client) Send(to, subject, text string) error {
	if !c.Enabled() {
		return nil
	}
	b, _ := json.Marshal(map[string]any{
		"from":    c.from,
		"to":      to,
		"subject": subject,
		"text":    text,
	})
	req, _ := http.NewRequest("POST", c.apiURL, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail api: %s", resp.Status)
	}
	return nil
}

// SendTemplate sends the named template. data keys per template:
// booking_form_link wants "company" and "form_url"; invoice wants
// "company" and "invoice_number" (may be empty for deferrals);
// joining_instructions wants "company" and "courses".
func (c *Client) SendTemplate(key, to string, data map[string]string) error {
	switch key {
	case services.TemplateBookingFormLink:
		return c.Send(to,
			fmt.Sprintf("Your booking form - %s", data["company"]),
			fmt.Sprintf("Hello,\n\nPlease complete and sign your course booking form:\n%s\n\nThe link is personal and expires; contact us if it no longer works.\n", data["form_url"]))
	case services.TemplateInvoice:
		return c.Send(to,
			fmt.Sprintf("Invoice for your booking - %s", data["company"]),
			fmt.Sprintf("Hello,\n\nYour invoice %s has been raised for your course booking. Payment details are on the invoice.\n", data["invoice_number"]))
	case services.TemplateJoiningInstructions:
		return c.Send(to,
			fmt.Sprintf("Joining instructions - %s", data["company"]),
			fmt.Sprintf("Hello,\n\nPlease find joining instructions for your booked course(s):\n%s\n\nWe look forward to seeing your delegates.\n", data["courses"]))
	}
	return fmt.Errorf("unknown mail template %q", key)
}
