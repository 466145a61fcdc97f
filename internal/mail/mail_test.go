package mail

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/traindesk/traindesk/internal/config"
	"github.com/traindesk/traindesk/internal/services"
)

func TestClientDisabledWithoutURL(t *testing.T) {
	config.C.MailAPIURL = ""
	c := NewClient()
	if c.Enabled() {
		t.Fatalf("client should be disabled without a provider URL")
	}
	if err := c.Send("pat@acme.test", "hi", "body"); err != nil {
		t.Errorf("disabled client must not error: %v", err)
	}
}

func TestSendTemplate(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer key-1" {
			t.Errorf("authorization header: %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	config.C.MailAPIURL = srv.URL
	config.C.MailAPIKey = "key-1"
	config.C.MailFrom = "bookings@traindesk.example"
	defer func() {
		config.C.MailAPIURL = ""
		config.C.MailAPIKey = ""
	}()

	err := NewClient().SendTemplate(services.TemplateBookingFormLink, "pat@acme.test", map[string]string{
		"company":  "Acme Ltd",
		"form_url": "http://localhost:8080/forms/tok-1",
	})
	if err != nil {
		t.Fatalf("send template: %v", err)
	}
	if got["to"] != "pat@acme.test" || got["from"] != "bookings@traindesk.example" {
		t.Errorf("addressing: %v", got)
	}
	if !strings.Contains(got["subject"], "Acme Ltd") {
		t.Errorf("subject: %q", got["subject"])
	}
	if !strings.Contains(got["text"], "http://localhost:8080/forms/tok-1") {
		t.Errorf("body should carry the form link: %q", got["text"])
	}
}

func TestSendTemplateUnknownKey(t *testing.T) {
	config.C.MailAPIURL = "http://mail.invalid"
	defer func() { config.C.MailAPIURL = "" }()

	if err := NewClient().SendTemplate("no_such_template", "x@y.test", nil); err == nil {
		t.Errorf("unknown template key must error")
	}
}
