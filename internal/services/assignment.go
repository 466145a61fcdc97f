package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/traindesk/traindesk/internal/models"
)

// Course assignment status values as reported by CourseStatusFor.
const (
	StatusValid        = "valid"
	StatusInsufficient = "insufficient"
	StatusExcess       = "excess"
	StatusUnknown      = "unknown"
)

// RejectionError is a user-correctable validation failure. Its message
// names the offending delegate or course so the caller can surface a
// precise prompt instead of a generic "form invalid".
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string { return e.Reason }

func rejectf(format string, args ...any) error {
	return &RejectionError{Reason: fmt.Sprintf(format, args...)}
}

// DelegateForm is one delegate as edited on the customer booking form.
// SelectedCourses holds roster course ids; being a set, repeated selects
// and deselects are naturally idempotent.
type DelegateForm struct {
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	NINumber        string        `json:"ni_number"`
	BirthDate       string        `json:"birth_date"` // 2006-01-02
	Address         string        `json:"address"`
	Postcode        string        `json:"postcode"`
	SelectedCourses map[uint]bool `json:"selected_courses"`
}

// FormState is the whole in-progress booking form: the frozen course
// roster plus the delegates being edited. It is passed by value and every
// operation returns a deep copy, so the engine can be re-run per
// keystroke without aliasing the caller's state.
type FormState struct {
	Courses   []models.Course `json:"courses"`
	Delegates []DelegateForm  `json:"delegates"`
}

func (s FormState) clone() FormState {
	out := FormState{
		Courses:   append([]models.Course(nil), s.Courses...),
		Delegates: make([]DelegateForm, len(s.Delegates)),
	}
	for i, d := range s.Delegates {
		sel := make(map[uint]bool, len(d.SelectedCourses))
		for id, on := range d.SelectedCourses {
			if on {
				sel[id] = true
			}
		}
		d.SelectedCourses = sel
		out.Delegates[i] = d
	}
	return out
}

// MinimumDelegates is the floor below which delegates may not be removed:
// the single most demanding course still needs its seats filled. An empty
// roster keeps a floor of one so the form always shows a delegate.
func MinimumDelegates(courses []models.Course) int {
	min := 1
	for _, c := range courses {
		if c.RequiredDelegates > min {
			min = c.RequiredDelegates
		}
	}
	return min
}

// NewFormState seeds a fresh form with one blank delegate per mandatory
// seat of the most demanding course.
func NewFormState(courses []models.Course) FormState {
	st := FormState{Courses: append([]models.Course(nil), courses...)}
	for i := 0; i < MinimumDelegates(courses); i++ {
		st = AddDelegate(st)
	}
	return st
}

// AddDelegate appends one blank delegate. On a single-course roster the
// new delegate is auto-selected into that course (no ambiguity about
// which course they attend); multi-course rosters require an explicit
// choice.
func AddDelegate(s FormState) FormState {
	out := s.clone()
	d := DelegateForm{SelectedCourses: map[uint]bool{}}
	if len(out.Courses) == 1 {
		d.SelectedCourses[out.Courses[0].ID] = true
	}
	out.Delegates = append(out.Delegates, d)
	return out
}

// RemoveDelegate removes the delegate at index and compacts the list.
// Rejected at or below the minimum.
func RemoveDelegate(s FormState, index int) (FormState, error) {
	min := MinimumDelegates(s.Courses)
	if len(s.Delegates) <= min {
		if min == 1 {
			return s, rejectf("at least one delegate is required")
		}
		return s, rejectf("at least %d delegates are required to fill every course", min)
	}
	if index < 0 || index >= len(s.Delegates) {
		return s, rejectf("no delegate at position %d", index+1)
	}
	out := s.clone()
	out.Delegates = append(out.Delegates[:index], out.Delegates[index+1:]...)
	return out, nil
}

// ToggleCourse adds or removes one course from one delegate's selection.
// No cross-delegate side effects. Out-of-range indexes are a no-op: the
// caller may be mid-edit against a stale state.
func ToggleCourse(s FormState, delegateIndex int, courseID uint, selected bool) FormState {
	out := s.clone()
	if delegateIndex < 0 || delegateIndex >= len(out.Delegates) {
		return out
	}
	d := &out.Delegates[delegateIndex]
	if d.SelectedCourses == nil {
		d.SelectedCourses = map[uint]bool{}
	}
	if selected {
		d.SelectedCourses[courseID] = true
	} else {
		delete(d.SelectedCourses, courseID)
	}
	return out
}

// CourseStatus reports how one course's seats are filled right now.
type CourseStatus struct {
	Status   string `json:"status"`
	Assigned int    `json:"assigned"`
	Required int    `json:"required"`
}

// CourseStatusFor recounts assignments for courseID. Cheap and pure, so
// the UI can recompute it on every keystroke; it is also the authoritative
// submission gate. A course id not on the roster reports StatusUnknown
// rather than panicking.
func CourseStatusFor(s FormState, courseID uint) CourseStatus {
	var course *models.Course
	for i := range s.Courses {
		if s.Courses[i].ID == courseID {
			course = &s.Courses[i]
			break
		}
	}
	if course == nil {
		return CourseStatus{Status: StatusUnknown}
	}

	assigned := 0
	for _, d := range s.Delegates {
		if d.SelectedCourses[courseID] {
			assigned++
		}
	}

	status := StatusValid
	switch {
	case assigned < course.RequiredDelegates:
		status = StatusInsufficient
	case assigned > course.RequiredDelegates:
		status = StatusExcess
	}
	return CourseStatus{Status: status, Assigned: assigned, Required: course.RequiredDelegates}
}

// Validate decides pass/fail for submission. Seat counts must match
// exactly: course price and trainer capacity are fixed per seat, so
// overbooking corrupts seat counts downstream and underbooking leaves a
// paid seat unfilled. The first offending delegate or course is named;
// failures are never aggregated.
func Validate(s FormState) error {
	for i, d := range s.Delegates {
		who := strings.TrimSpace(d.Name)
		if who == "" {
			who = fmt.Sprintf("delegate %d", i+1)
		}
		if strings.TrimSpace(d.Name) == "" {
			return rejectf("%s: full name is required", who)
		}
		if NormNINumber(d.NINumber) == "" {
			return rejectf("%s: a valid National Insurance number is required", who)
		}
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(d.BirthDate)); err != nil {
			return rejectf("%s: date of birth is required (YYYY-MM-DD)", who)
		}
		if strings.TrimSpace(d.Address) == "" {
			return rejectf("%s: address is required", who)
		}
		if NormPostcode(d.Postcode) == "" {
			return rejectf("%s: a valid postcode is required", who)
		}
		if _, ok := NormEmail(d.Email); !ok {
			return rejectf("%s: email address looks invalid", who)
		}
		if len(s.Courses) > 0 && countSelected(d) == 0 {
			return rejectf("%s: select at least one course", who)
		}
	}

	for _, c := range s.Courses {
		cs := CourseStatusFor(s, c.ID)
		switch cs.Status {
		case StatusInsufficient:
			return rejectf("%s needs %d delegate(s) but has %d assigned", c.Name, cs.Required, cs.Assigned)
		case StatusExcess:
			return rejectf("%s has %d delegate(s) assigned but only %d seat(s) were purchased", c.Name, cs.Assigned, cs.Required)
		}
	}
	return nil
}

func countSelected(d DelegateForm) int {
	n := 0
	for _, on := range d.SelectedCourses {
		if on {
			n++
		}
	}
	return n
}
