package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/events"
	"github.com/traindesk/traindesk/internal/models"
)

// FinalizeSubmission freezes a validated booking form: delegate rows and
// their course-link rows are written and the form flips to signed.
//
// The submitted state's course roster is never trusted: seat counts are
// re-validated against the deal's persisted courses, and a selection
// naming a course outside the deal is rejected outright. Writes are
// fail-fast single attempts and there is no compensating delete: if link
// rows fail after delegate rows were written, the partial state stays and
// the error is surfaced. The form only flips to signed last, so
// re-submission stays possible until the flip succeeds, and the one-shot
// signed status blocks it afterwards.
func FinalizeSubmission(token string, state FormState, signedBy string) (models.BookingForm, error) {
	form, err := FormByToken(token)
	if err != nil {
		return form, err
	}

	roster, err := DealCourses(form.DealID)
	if err != nil {
		return form, err
	}
	state.Courses = roster
	onDeal := make(map[uint]bool, len(roster))
	for _, c := range roster {
		onDeal[c.ID] = true
	}
	for i, d := range state.Delegates {
		for courseID, on := range d.SelectedCourses {
			if on && !onDeal[courseID] {
				who := strings.TrimSpace(d.Name)
				if who == "" {
					who = fmt.Sprintf("delegate %d", i+1)
				}
				return form, rejectf("%s: selected a course that is not part of this booking", who)
			}
		}
	}

	if err := Validate(state); err != nil {
		return form, err
	}

	for i := range state.Delegates {
		d := state.Delegates[i]
		dob, _ := time.Parse("2006-01-02", d.BirthDate) // Validate parsed it already
		email, _ := NormEmail(d.Email)

		row := models.Delegate{
			DealID:    form.DealID,
			Name:      d.Name,
			Email:     email,
			Phone:     d.Phone,
			NINumber:  NormNINumber(d.NINumber),
			BirthDate: dob,
			Address:   d.Address,
			Postcode:  NormPostcode(d.Postcode),
		}
		if err := db.Conn().Create(&row).Error; err != nil {
			return form, fmt.Errorf("save delegate %q: %w", d.Name, err)
		}

		links := make([]models.CourseSelection, 0, len(d.SelectedCourses))
		for courseID, on := range d.SelectedCourses {
			if on {
				links = append(links, models.CourseSelection{
					DealID:     form.DealID,
					DelegateID: row.ID,
					CourseID:   courseID,
				})
			}
		}
		if len(links) > 0 {
			if err := db.Conn().Create(&links).Error; err != nil {
				return form, fmt.Errorf("save course links for %q: %w", d.Name, err)
			}
		}
	}

	now := time.Now()
	form.Status = models.FormStatusSigned
	form.SignedAt = &now
	form.SignedBy = signedBy
	if err := db.Conn().Save(&form).Error; err != nil {
		return form, fmt.Errorf("mark form signed: %w", err)
	}

	if events.OnFormSigned != nil {
		events.OnFormSigned(form)
	}
	return form, nil
}

// DealDelegates returns the frozen delegates of a deal in insertion order.
func DealDelegates(dealID uint) ([]models.Delegate, error) {
	var out []models.Delegate
	err := db.Conn().Where("deal_id = ?", dealID).Order("id asc").Find(&out).Error
	return out, err
}

// DelegateCourses returns which courses one frozen delegate attends, in
// roster display order. This is the post-submission query the document
// generator relies on.
func DelegateCourses(delegateID uint) ([]models.Course, error) {
	var out []models.Course
	err := db.Conn().
		Joins("JOIN course_selections cs ON cs.course_id = courses.id").
		Where("cs.delegate_id = ?", delegateID).
		Order("courses.position asc, courses.id asc").
		Find(&out).Error
	return out, err
}

// DealCourses returns a deal's roster in display order.
func DealCourses(dealID uint) ([]models.Course, error) {
	var out []models.Course
	err := db.Conn().Where("deal_id = ?", dealID).
		Order("position asc, id asc").Find(&out).Error
	return out, err
}
