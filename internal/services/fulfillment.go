package services

import "strings"

// Stage is the single next-action classification of a won deal. Exactly
// one stage holds at any time; staff see one call-to-action, never
// several conflicting ones.
type Stage string

const (
	StageCompleted                   Stage = "completed"
	StageAwaitingJoiningInstructions Stage = "awaiting_joining_instructions"
	StageAwaitingBookingCreation     Stage = "awaiting_booking_creation"
	StageAwaitingInvoice             Stage = "awaiting_invoice"
	StageAwaitingSignature           Stage = "awaiting_signature"
	StageAwaitingFormCreation        Stage = "awaiting_form_creation"
)

func (s Stage) String() string { return string(s) }

// IsTerminal reports whether the stage has no forward transition left.
// Completed still allows re-sending joining instructions.
func (s Stage) IsTerminal() bool { return s == StageCompleted }

// Snapshot is a read-only projection of the persisted fulfillment facts
// for one deal. It has no lifecycle of its own: LoadSnapshot rebuilds it
// from the records every time a classification is needed, so two staff
// members may hold independent, possibly stale copies. Classification is
// advice, not a reservation.
type Snapshot struct {
	HasForm     bool `json:"has_form"`
	FormPending bool `json:"form_pending"`
	FormSigned  bool `json:"form_signed"`

	InvoiceNumber   string `json:"invoice_number"`
	InvoiceDeferred bool   `json:"invoice_deferred"`
	PaymentLinkSent bool   `json:"payment_link_sent"`

	BookingsCreated         int `json:"bookings_created"`
	CoursesRequiringBooking int `json:"courses_requiring_booking"`

	JoiningInstructionsSent bool `json:"joining_instructions_sent"`
}

// InvoiceSubmitted is true under any of three independent conditions: a
// recorded invoice number, an explicit deferral, or a sent payment link.
// They are OR'd, not layered; any one path unblocks booking creation.
func (s Snapshot) InvoiceSubmitted() bool {
	return strings.TrimSpace(s.InvoiceNumber) != "" || s.InvoiceDeferred || s.PaymentLinkSent
}

func (s Snapshot) bookingsComplete() bool {
	return s.BookingsCreated >= s.CoursesRequiringBooking
}

type stageRule struct {
	stage Stage
	match func(Snapshot) bool
}

// stageRules is evaluated top-down and the first match wins. The order IS
// the priority: the underlying facts can sit in inconsistent combinations
// (bookings created before the invoice was recorded), and each predicate
// is evaluable on its own rather than as a step of a linear counter.
var stageRules = []stageRule{
	{StageCompleted, func(s Snapshot) bool {
		return s.bookingsComplete() && s.JoiningInstructionsSent
	}},
	{StageAwaitingJoiningInstructions, func(s Snapshot) bool {
		return s.bookingsComplete() && s.InvoiceSubmitted() && !s.JoiningInstructionsSent
	}},
	{StageAwaitingBookingCreation, func(s Snapshot) bool {
		return s.FormSigned && s.InvoiceSubmitted() && s.BookingsCreated < s.CoursesRequiringBooking
	}},
	{StageAwaitingInvoice, func(s Snapshot) bool {
		return s.FormSigned && !s.InvoiceSubmitted()
	}},
	{StageAwaitingSignature, func(s Snapshot) bool {
		return s.HasForm && s.FormPending
	}},
}

// Classify maps any snapshot to exactly one stage. Deals that match no
// rule (in particular deals with no booking form yet) fall through to
// form creation.
func Classify(s Snapshot) Stage {
	for _, r := range stageRules {
		if r.match(s) {
			return r.stage
		}
	}
	return StageAwaitingFormCreation
}

// RemainingBookings is how many courses still need a booking row.
func RemainingBookings(s Snapshot) int {
	n := s.CoursesRequiringBooking - s.BookingsCreated
	if n < 0 {
		n = 0
	}
	return n
}

// NextAction is the staff-facing call-to-action for the snapshot's stage.
func NextAction(s Snapshot) string {
	switch Classify(s) {
	case StageCompleted:
		return "Fulfillment complete; joining instructions can be re-sent"
	case StageAwaitingJoiningInstructions:
		return "Send joining instructions"
	case StageAwaitingBookingCreation:
		return "Create the next course booking"
	case StageAwaitingInvoice:
		return "Send or defer the invoice"
	case StageAwaitingSignature:
		return "Chase the customer for the signed booking form"
	default:
		return "Create and send a booking form"
	}
}

// Mail template keys. Each stage exposes at most one applicable outbound
// message; sending is the caller's business, never the machine's.
const (
	TemplateBookingFormLink     = "booking_form_link"
	TemplateInvoice             = "invoice"
	TemplateJoiningInstructions = "joining_instructions"
)

// MailTemplate names the single message template applicable in a stage,
// or "" when none is.
func MailTemplate(st Stage) string {
	switch st {
	case StageAwaitingFormCreation, StageAwaitingSignature:
		return TemplateBookingFormLink
	case StageAwaitingInvoice:
		return TemplateInvoice
	case StageAwaitingJoiningInstructions, StageCompleted:
		return TemplateJoiningInstructions
	}
	return ""
}
