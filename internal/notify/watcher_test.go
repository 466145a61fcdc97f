package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/traindesk/traindesk/internal/config"
	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/models"
	"github.com/traindesk/traindesk/internal/services"
)

func openTestDB(t *testing.T) {
	t.Helper()
	if err := db.Init(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("init db: %v", err)
	}
}

func TestClientDisabledWithoutURL(t *testing.T) {
	config.C.StaffWebhookURL = ""
	c := NewClient()
	if c.Enabled() {
		t.Fatalf("client should be disabled without a webhook URL")
	}
	if err := c.Send("hello"); err != nil {
		t.Errorf("disabled client must not error: %v", err)
	}
}

func TestClientPostsText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	config.C.StaffWebhookURL = srv.URL
	defer func() { config.C.StaffWebhookURL = "" }()

	if err := NewClient().Send("deal moved"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["text"] != "deal moved" {
		t.Errorf("payload: %v", got)
	}
}

func TestClientSurfacesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	config.C.StaffWebhookURL = srv.URL
	defer func() { config.C.StaffWebhookURL = "" }()

	if err := NewClient().Send("x"); err == nil {
		t.Errorf("5xx response must surface an error")
	}
}

func TestStageChanges(t *testing.T) {
	openTestDB(t)

	deal := models.Deal{Company: "Acme Ltd"}
	if err := db.Conn().Create(&deal).Error; err != nil {
		t.Fatalf("create deal: %v", err)
	}
	course := models.Course{DealID: deal.ID, Name: "CourseX", RequiredDelegates: 1}
	if err := db.Conn().Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}

	since := time.Now().Add(-time.Minute)
	last := make(map[uint]services.Stage)

	// First pass: the new deal surfaces with its derived stage.
	changes := stageChanges(since, last)
	if len(changes) != 1 {
		t.Fatalf("want 1 change, got %d", len(changes))
	}
	if changes[0].DealID != deal.ID || changes[0].Stage != services.StageAwaitingFormCreation {
		t.Errorf("change: %+v", changes[0])
	}
	if changes[0].Company != "Acme Ltd" || changes[0].NextAction == "" {
		t.Errorf("change detail: %+v", changes[0])
	}

	// Second pass with nothing moved: silence.
	if changes := stageChanges(since, last); len(changes) != 0 {
		t.Fatalf("unchanged stage must not re-fire, got %+v", changes)
	}

	// A form flips the stage; the watcher reports the move.
	if _, err := services.CreateBookingForm(deal.ID, time.Hour); err != nil {
		t.Fatalf("create form: %v", err)
	}
	changes = stageChanges(since, last)
	if len(changes) != 1 || changes[0].Stage != services.StageAwaitingSignature {
		t.Fatalf("after form: %+v", changes)
	}

	// A deal untouched since the cutoff is not even reclassified.
	if changes := stageChanges(time.Now().Add(time.Hour), last); len(changes) != 0 {
		t.Errorf("future cutoff must match nothing, got %+v", changes)
	}
}

func TestRunChaseSkipsCompletedDeals(t *testing.T) {
	openTestDB(t)
	config.C.ChaseOffsets = []time.Duration{48 * time.Hour}
	config.C.StaffWebhookURL = ""

	now := time.Now()
	start := now.Truncate(time.Minute).Add(48*time.Hour + 30*time.Second)

	// Incomplete deal with a course inside the chase window.
	open := models.Deal{Company: "Open Ltd"}
	db.Conn().Create(&open)
	db.Conn().Create(&models.Course{DealID: open.ID, Name: "Soon", RequiredDelegates: 1, StartDate: start})

	// Completed deal with the same start: booked and instructed.
	did := time.Now()
	done := models.Deal{Company: "Done Ltd", InvoiceNumber: "INV-9", JoiningInstructionsSentAt: &did}
	db.Conn().Create(&done)
	doneCourse := models.Course{DealID: done.ID, Name: "Also Soon", RequiredDelegates: 1, StartDate: start}
	db.Conn().Create(&doneCourse)
	db.Conn().Create(&models.Booking{DealID: done.ID, CourseID: doneCourse.ID, Reference: "BK-9"})

	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		texts = append(texts, body["text"])
	}))
	defer srv.Close()
	config.C.StaffWebhookURL = srv.URL
	defer func() { config.C.StaffWebhookURL = "" }()

	runChase(NewClient(), now)

	if len(texts) != 1 {
		t.Fatalf("want 1 chase message, got %d: %v", len(texts), texts)
	}
	if !strings.Contains(texts[0], "Soon") || !strings.Contains(texts[0], "Open Ltd") {
		t.Errorf("chase message: %q", texts[0])
	}
	for _, txt := range texts {
		if strings.Contains(txt, "Done Ltd") {
			t.Errorf("completed deal must not be chased: %q", txt)
		}
	}
}
