package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/models"
	"github.com/traindesk/traindesk/internal/services"
)

// The customer form API is stateless on the server side: every operation
// takes the full form state in the request and returns the new state with
// fresh per-course status, so the page can re-render after each edit.
// Nothing is persisted until submit.

type courseStatusView struct {
	CourseID uint   `json:"course_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Assigned int    `json:"assigned"`
	Required int    `json:"required"`
}

type formPayload struct {
	Company          string             `json:"company"`
	State            services.FormState `json:"state"`
	MinimumDelegates int                `json:"minimum_delegates"`
	CourseStatus     []courseStatusView `json:"course_status"`
	Complete         bool               `json:"complete"`
}

func payloadFor(company string, state services.FormState) formPayload {
	statuses := make([]courseStatusView, 0, len(state.Courses))
	for _, c := range state.Courses {
		cs := services.CourseStatusFor(state, c.ID)
		statuses = append(statuses, courseStatusView{
			CourseID: c.ID,
			Name:     c.Name,
			Status:   cs.Status,
			Assigned: cs.Assigned,
			Required: cs.Required,
		})
	}
	return formPayload{
		Company:          company,
		State:            state,
		MinimumDelegates: services.MinimumDelegates(state.Courses),
		CourseStatus:     statuses,
		Complete:         services.Validate(state) == nil,
	}
}

// formDeal resolves the URL token to its live form and deal.
func formDeal(r *http.Request) (models.BookingForm, models.Deal, error) {
	form, err := services.FormByToken(chi.URLParam(r, "token"))
	if err != nil {
		return form, models.Deal{}, err
	}
	var deal models.Deal
	if err := db.Conn().First(&deal, form.DealID).Error; err != nil {
		return form, deal, err
	}
	return form, deal, nil
}

// GET /forms/{token} - fresh form state seeded with the minimum delegates.
func FormShow(w http.ResponseWriter, r *http.Request) {
	form, deal, err := formDeal(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	courses, err := services.DealCourses(form.DealID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payloadFor(deal.Company, services.NewFormState(courses)))
}

type stateRequest struct {
	State services.FormState `json:"state"`
}

// POST /forms/{token}/delegates - append one blank delegate.
func FormAddDelegate(w http.ResponseWriter, r *http.Request) {
	_, deal, err := formDeal(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req stateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payloadFor(deal.Company, services.AddDelegate(req.State)))
}

// POST /forms/{token}/delegates/remove
func FormRemoveDelegate(w http.ResponseWriter, r *http.Request) {
	_, deal, err := formDeal(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req struct {
		State services.FormState `json:"state"`
		Index int                `json:"index"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	next, err := services.RemoveDelegate(req.State, req.Index)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payloadFor(deal.Company, next))
}

// POST /forms/{token}/toggle - select or deselect one course for one delegate.
func FormToggleCourse(w http.ResponseWriter, r *http.Request) {
	_, deal, err := formDeal(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req struct {
		State    services.FormState `json:"state"`
		Delegate int                `json:"delegate"`
		CourseID uint               `json:"course_id"`
		Selected bool               `json:"selected"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	next := services.ToggleCourse(req.State, req.Delegate, req.CourseID, req.Selected)
	writeJSON(w, http.StatusOK, payloadFor(deal.Company, next))
}

// POST /forms/{token}/validate - dry-run the submission gate.
func FormValidate(w http.ResponseWriter, r *http.Request) {
	if _, _, err := formDeal(r); err != nil {
		writeServiceError(w, err)
		return
	}
	var req stateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := services.Validate(req.State); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /forms/{token}/submit - validate, freeze, sign. One-shot: a signed
// form rejects any further submission.
func FormSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State    services.FormState `json:"state"`
		SignedBy string             `json:"signed_by"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	form, err := services.FinalizeSubmission(chi.URLParam(r, "token"), req.State, req.SignedBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    form.Status,
		"signed_at": form.SignedAt,
		"signed_by": form.SignedBy,
	})
}
