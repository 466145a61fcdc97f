package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/traindesk/traindesk/internal/config"
	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/mail"
	"github.com/traindesk/traindesk/internal/models"
	"github.com/traindesk/traindesk/internal/services"
)

func dealFromURL(r *http.Request) (models.Deal, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return models.Deal{}, services.ErrFormNotFound
	}
	var deal models.Deal
	if err := db.Conn().First(&deal, id).Error; err != nil {
		return models.Deal{}, err
	}
	return deal, nil
}

type courseRequest struct {
	Name              string `json:"name"`
	Dates             string `json:"dates"`
	StartDate         string `json:"start_date"` // 2006-01-02, optional
	Venue             string `json:"venue"`
	RequiredDelegates int    `json:"required_delegates"`
	PricePence        int64  `json:"price_pence"`
	Currency          string `json:"currency"`
}

// POST /admin/deals - record a won deal with its purchased course roster.
// Insertion order of the courses is their display order.
func DealCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Company      string          `json:"company"`
		ContactName  string          `json:"contact_name"`
		ContactEmail string          `json:"contact_email"`
		ContactPhone string          `json:"contact_phone"`
		Courses      []courseRequest `json:"courses"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Company) == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}
	for _, c := range req.Courses {
		if strings.TrimSpace(c.Name) == "" {
			writeError(w, http.StatusBadRequest, "every course needs a name")
			return
		}
		if c.RequiredDelegates <= 0 {
			writeError(w, http.StatusBadRequest, "course "+c.Name+": required_delegates must be a positive integer")
			return
		}
	}

	deal := models.Deal{
		Company:      req.Company,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}
	if err := db.Conn().Create(&deal).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	for i, c := range req.Courses {
		start, _ := time.Parse("2006-01-02", c.StartDate)
		currency := c.Currency
		if currency == "" {
			currency = "GBP"
		}
		course := models.Course{
			DealID:            deal.ID,
			Name:              c.Name,
			Dates:             c.Dates,
			StartDate:         start,
			Venue:             c.Venue,
			RequiredDelegates: c.RequiredDelegates,
			PricePence:        c.PricePence,
			Currency:          currency,
			Position:          i,
		}
		if err := db.Conn().Create(&course).Error; err != nil {
			writeServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": deal.ID})
}

type dealView struct {
	ID         uint              `json:"id"`
	Company    string            `json:"company"`
	Stage      services.Stage    `json:"stage"`
	NextAction string            `json:"next_action"`
	Remaining  int               `json:"remaining_bookings"`
	Snapshot   services.Snapshot `json:"snapshot"`
	MailError  string            `json:"mail_error,omitempty"`
}

func viewFor(deal models.Deal, snap services.Snapshot) dealView {
	return dealView{
		ID:         deal.ID,
		Company:    deal.Company,
		Stage:      services.Classify(snap),
		NextAction: services.NextAction(snap),
		Remaining:  services.RemainingBookings(snap),
		Snapshot:   snap,
	}
}

// GET /admin/deals - the pipeline: every deal with its derived stage.
// Each snapshot is rebuilt from the records on every call; the stage is
// never stored.
func DealList(w http.ResponseWriter, r *http.Request) {
	var deals []models.Deal
	if err := db.Conn().Order("id asc").Find(&deals).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]dealView, 0, len(deals))
	for _, d := range deals {
		snap, err := services.LoadSnapshot(d.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out = append(out, viewFor(d, snap))
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /admin/deals/{id}
func DealShow(w http.ResponseWriter, r *http.Request) {
	deal, err := dealFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	snap, err := services.LoadSnapshot(deal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	courses, err := services.DealCourses(deal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var bookings []models.Booking
	if err := db.Conn().Where("deal_id = ?", deal.ID).Order("id asc").Find(&bookings).Error; err != nil {
		writeServiceError(w, err)
		return
	}

	stage := services.Classify(snap)
	writeJSON(w, http.StatusOK, map[string]any{
		"deal":          viewFor(deal, snap),
		"contact_email": deal.ContactEmail,
		"courses":       courses,
		"bookings":      bookings,
		"mail_template": services.MailTemplate(stage),
	})
}

// POST /admin/deals/{id}/form - issue a fresh customer form link and mail
// it to the contact.
func DealCreateForm(w http.ResponseWriter, r *http.Request) {
	deal, err := dealFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	form, err := services.CreateBookingForm(deal.ID, config.C.FormTTL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	formURL := config.C.BaseURL + "/forms/" + form.Token
	mailErr := mail.NewClient().SendTemplate(services.TemplateBookingFormLink, deal.ContactEmail, map[string]string{
		"company":  deal.Company,
		"form_url": formURL,
	})

	// The link itself is live either way; a failed send is reported so
	// staff can forward the URL by hand.
	out := map[string]any{
		"token":      form.Token,
		"url":        formURL,
		"qr_url":     config.C.BaseURL + "/qr/forms/" + form.Token + ".png",
		"expires_at": form.ExpiresAt,
	}
	if mailErr != nil {
		log.Printf("booking form mail for deal %d failed: %v", deal.ID, mailErr)
		out["mail_error"] = "the booking form link could not be mailed; send the URL manually"
	}
	writeJSON(w, http.StatusCreated, out)
}

// POST /admin/deals/{id}/invoice - record exactly one of the three
// independent invoice paths: a number, an explicit deferral, or a sent
// payment link. Any one of them unblocks booking creation.
func DealInvoice(w http.ResponseWriter, r *http.Request) {
	deal, err := dealFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req struct {
		InvoiceNumber string `json:"invoice_number"`
		Defer         bool   `json:"defer"`
		PaymentLink   bool   `json:"payment_link"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	number := strings.TrimSpace(req.InvoiceNumber)
	actions := 0
	if number != "" {
		actions++
	}
	if req.Defer {
		actions++
	}
	if req.PaymentLink {
		actions++
	}
	if actions != 1 {
		writeError(w, http.StatusBadRequest, "provide exactly one of invoice_number, defer or payment_link")
		return
	}

	switch {
	case number != "":
		deal.InvoiceNumber = number
	case req.Defer:
		deal.InvoiceDeferred = true
	case req.PaymentLink:
		now := time.Now()
		deal.PaymentLinkSentAt = &now
	}
	if err := db.Conn().Save(&deal).Error; err != nil {
		writeServiceError(w, err)
		return
	}

	// The invoice fact is already recorded; a failed send is reported
	// alongside the new stage rather than rolled back.
	var mailErr error
	if number != "" {
		mailErr = mail.NewClient().SendTemplate(services.TemplateInvoice, deal.ContactEmail, map[string]string{
			"company":        deal.Company,
			"invoice_number": number,
		})
		if mailErr != nil {
			log.Printf("invoice mail for deal %d failed: %v", deal.ID, mailErr)
		}
	}

	respondWithStage(w, deal, mailErr)
}

// POST /admin/deals/{id}/bookings - record one provider booking for one
// course. A course takes a single booking row; the row count is the
// server-side re-validation of "create the next booking".
func DealAddBooking(w http.ResponseWriter, r *http.Request) {
	deal, err := dealFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req struct {
		CourseID  uint   `json:"course_id"`
		Reference string `json:"reference"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var course models.Course
	if err := db.Conn().Where("id = ? AND deal_id = ?", req.CourseID, deal.ID).
		First(&course).Error; err != nil {
		writeError(w, http.StatusNotFound, "course not found on this deal")
		return
	}
	var existing int64
	db.Conn().Model(&models.Booking{}).Where("course_id = ?", course.ID).Count(&existing)
	if existing > 0 {
		writeError(w, http.StatusConflict, course.Name+" already has a booking")
		return
	}

	booking := models.Booking{DealID: deal.ID, CourseID: course.ID, Reference: req.Reference}
	if err := db.Conn().Create(&booking).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithStage(w, deal, nil)
}

// POST /admin/deals/{id}/joining-instructions - send (or, once completed,
// re-send) joining instructions. Blocked until every course is booked.
func DealJoiningInstructions(w http.ResponseWriter, r *http.Request) {
	deal, err := dealFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	snap, err := services.LoadSnapshot(deal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if services.RemainingBookings(snap) > 0 {
		writeError(w, http.StatusConflict, "bookings are incomplete; create the remaining bookings first")
		return
	}

	courses, err := services.DealCourses(deal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	lines := make([]string, len(courses))
	for i, c := range courses {
		lines[i] = c.Name + " - " + c.Dates + " - " + c.Venue
	}
	// A failed send must not stamp the flag: the stamp is what moves the
	// deal to completed, and instructions the customer never received
	// would complete it silently.
	err = mail.NewClient().SendTemplate(services.TemplateJoiningInstructions, deal.ContactEmail, map[string]string{
		"company": deal.Company,
		"courses": strings.Join(lines, "\n"),
	})
	if err != nil {
		log.Printf("joining instructions mail for deal %d failed: %v", deal.ID, err)
		writeError(w, http.StatusBadGateway, "sending joining instructions failed; the deal was not updated")
		return
	}

	// First send stamps the flag; re-sends keep the original timestamp.
	if deal.JoiningInstructionsSentAt == nil {
		now := time.Now()
		deal.JoiningInstructionsSentAt = &now
		if err := db.Conn().Save(&deal).Error; err != nil {
			writeServiceError(w, err)
			return
		}
	}
	respondWithStage(w, deal, nil)
}

func respondWithStage(w http.ResponseWriter, deal models.Deal, mailErr error) {
	snap, err := services.LoadSnapshot(deal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	view := viewFor(deal, snap)
	if mailErr != nil {
		view.MailError = "the customer mail could not be sent"
	}
	writeJSON(w, http.StatusOK, view)
}
