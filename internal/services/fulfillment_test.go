package services

import "testing"

// snap builds a snapshot for a two-course deal; callers override the
// facts under test.
func snap(mods ...func(*Snapshot)) Snapshot {
	s := Snapshot{CoursesRequiringBooking: 2}
	for _, m := range mods {
		m(&s)
	}
	return s
}

func signed(s *Snapshot)     { s.HasForm = true; s.FormSigned = true }
func pending(s *Snapshot)    { s.HasForm = true; s.FormPending = true }
func invoiced(s *Snapshot)   { s.InvoiceNumber = "INV-100" }
func booked(s *Snapshot)     { s.BookingsCreated = s.CoursesRequiringBooking }
func instructed(s *Snapshot) { s.JoiningInstructionsSent = true }
func partBooked(s *Snapshot) { s.BookingsCreated = 1 }
func deferred(s *Snapshot)   { s.InvoiceDeferred = true }
func linkSent(s *Snapshot)   { s.PaymentLinkSent = true }

func TestClassifyStageLadder(t *testing.T) {
	cases := []struct {
		name string
		s    Snapshot
		want Stage
	}{
		{"no form at all", snap(), StageAwaitingFormCreation},
		{"form pending", snap(pending), StageAwaitingSignature},
		{"signed, nothing else", snap(signed), StageAwaitingInvoice},
		{"signed and invoiced", snap(signed, invoiced), StageAwaitingBookingCreation},
		{"one booking to go", snap(signed, invoiced, partBooked), StageAwaitingBookingCreation},
		{"all booked", snap(signed, invoiced, booked), StageAwaitingJoiningInstructions},
		{"instructions sent", snap(signed, invoiced, booked, instructed), StageCompleted},
	}
	for _, tc := range cases {
		if got := Classify(tc.s); got != tc.want {
			t.Errorf("%s: want %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestClassifyPartialBookings(t *testing.T) {
	// Signed form, invoice recorded, one of two bookings made.
	s := snap(signed, invoiced, partBooked)
	if got := Classify(s); got != StageAwaitingBookingCreation {
		t.Fatalf("want %s, got %s", StageAwaitingBookingCreation, got)
	}
	if n := RemainingBookings(s); n != 1 {
		t.Errorf("want 1 remaining booking, got %d", n)
	}
}

func TestClassifyBookingsBeforeInvoice(t *testing.T) {
	// Out-of-order facts: bookings exist but the invoice does not. The
	// higher-priority completion rules must not fire; the form-signed
	// invoice gap wins.
	s := snap(signed, booked)
	if got := Classify(s); got != StageAwaitingInvoice {
		t.Errorf("bookings without invoice: want %s, got %s", StageAwaitingInvoice, got)
	}
}

func TestClassifyCompletedBeatsEverything(t *testing.T) {
	// Once bookings are complete and instructions went out, the deal is
	// done regardless of form or invoice facts.
	s := snap(booked, instructed)
	if got := Classify(s); got != StageCompleted {
		t.Errorf("want %s, got %s", StageCompleted, got)
	}
}

func TestClassifyInvoicePaths(t *testing.T) {
	// Number, deferral, and payment link each independently unblock
	// booking creation.
	for name, mod := range map[string]func(*Snapshot){
		"invoice number": invoiced,
		"deferral":       deferred,
		"payment link":   linkSent,
	} {
		s := snap(signed, mod)
		if got := Classify(s); got != StageAwaitingBookingCreation {
			t.Errorf("%s: want %s, got %s", name, StageAwaitingBookingCreation, got)
		}
	}

	if snap().InvoiceSubmitted() {
		t.Errorf("no invoice facts: InvoiceSubmitted must be false")
	}
	if !snap(func(s *Snapshot) { s.InvoiceNumber = "  " }, deferred).InvoiceSubmitted() {
		t.Errorf("deferral alone must count as submitted")
	}
}

func TestClassifyIsTotal(t *testing.T) {
	// Every combination of the underlying facts must classify. This
	// includes inconsistent ones (bookings before any form exists).
	var forms = []func(*Snapshot){func(*Snapshot) {}, pending, signed}
	var invoices = []func(*Snapshot){func(*Snapshot) {}, invoiced, deferred, linkSent}
	var bookings = []func(*Snapshot){func(*Snapshot) {}, partBooked, booked}
	var instrs = []func(*Snapshot){func(*Snapshot) {}, instructed}

	seen := map[Stage]bool{}
	for _, f := range forms {
		for _, inv := range invoices {
			for _, b := range bookings {
				for _, ins := range instrs {
					s := snap(f, inv, b, ins)
					st := Classify(s)
					if st == "" {
						t.Fatalf("unclassified snapshot: %+v", s)
					}
					seen[st] = true
				}
			}
		}
	}
	// The enumeration should reach every stage.
	for _, st := range []Stage{
		StageCompleted, StageAwaitingJoiningInstructions,
		StageAwaitingBookingCreation, StageAwaitingInvoice,
		StageAwaitingSignature, StageAwaitingFormCreation,
	} {
		if !seen[st] {
			t.Errorf("stage %s never produced by the enumeration", st)
		}
	}
}

func TestRemainingBookingsNeverNegative(t *testing.T) {
	s := snap(func(s *Snapshot) { s.BookingsCreated = 5 })
	if n := RemainingBookings(s); n != 0 {
		t.Errorf("overshoot must clamp to 0, got %d", n)
	}
}

func TestIsTerminal(t *testing.T) {
	if !StageCompleted.IsTerminal() {
		t.Errorf("completed is terminal")
	}
	for _, st := range []Stage{
		StageAwaitingJoiningInstructions, StageAwaitingBookingCreation,
		StageAwaitingInvoice, StageAwaitingSignature, StageAwaitingFormCreation,
	} {
		if st.IsTerminal() {
			t.Errorf("%s should not be terminal", st)
		}
	}
}

func TestMailTemplate(t *testing.T) {
	cases := map[Stage]string{
		StageAwaitingFormCreation:        TemplateBookingFormLink,
		StageAwaitingSignature:           TemplateBookingFormLink,
		StageAwaitingInvoice:             TemplateInvoice,
		StageAwaitingJoiningInstructions: TemplateJoiningInstructions,
		StageCompleted:                   TemplateJoiningInstructions,
	}
	for st, want := range cases {
		if got := MailTemplate(st); got != want {
			t.Errorf("%s: want %q, got %q", st, want, got)
		}
	}
	if got := MailTemplate(Stage("awaiting_booking_creation")); got != "" {
		t.Errorf("booking creation stage has no outbound template, got %q", got)
	}
}
