package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting, loaded once at startup from the
// environment. Defaults are development-friendly; production deployments
// override via env vars.
type Config struct {
	Addr    string `env:"ADDR" envDefault:":8080"`
	DBPath  string `env:"DB_PATH" envDefault:"traindesk.db"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// change in production: export ADMIN_PASSWORD=...
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	// How long a customer booking-form link stays usable.
	FormTTL time.Duration `env:"FORM_TTL" envDefault:"336h"`

	// Staff notifications (disabled when the URL is empty).
	StaffWebhookURL string `env:"STAFF_WEBHOOK_URL"`

	// Outbound mail provider (disabled when the URL is empty).
	MailAPIURL string `env:"MAIL_API_URL"`
	MailAPIKey string `env:"MAIL_API_KEY"`
	MailFrom   string `env:"MAIL_FROM" envDefault:"bookings@traindesk.example"`

	// Fulfillment watch loop.
	WatcherEnabled bool          `env:"WATCHER_ENABLED" envDefault:"true"`
	WatchInterval  time.Duration `env:"WATCH_INTERVAL" envDefault:"1m"`

	// Chase staff this long before a course starts if fulfillment is
	// still incomplete, e.g. "168h,48h".
	ChaseOffsets []time.Duration `env:"CHASE_OFFSETS" envDefault:"168h,48h"`
}

var C Config

// Load parses the environment into the package-level Config.
func Load() error {
	if err := env.Parse(&C); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
