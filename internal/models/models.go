package models

import "time"

// Deal is a won sales transaction. The fulfillment fact fields below are
// set independently by staff actions; the current fulfillment stage is
// always derived from them, never stored.
type Deal struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Company      string
	ContactName  string
	ContactEmail string
	ContactPhone string

	InvoiceNumber             string
	InvoiceDeferred           bool
	PaymentLinkSentAt         *time.Time
	JoiningInstructionsSentAt *time.Time

	Courses []Course
}

// Course is one purchased course on a deal's roster. Immutable once the
// booking form is signed. Position preserves insertion order for display.
type Course struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	DealID uint `gorm:"index"`

	Name              string
	Dates             string // display label, e.g. "12-16 May 2025"
	StartDate         time.Time
	Venue             string
	RequiredDelegates int
	PricePence        int64
	Currency          string `gorm:"default:GBP"`
	Position          int
}

// Delegate is one attendee persisted at submission time. Rows only exist
// for signed forms; in-progress delegates live in the form state.
type Delegate struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	DealID uint `gorm:"index"`

	Name      string
	Email     string
	Phone     string
	NINumber  string
	BirthDate time.Time
	Address   string
	Postcode  string
}

// CourseSelection is one frozen delegate-to-course seat link. A unique
// index on (delegate_id, course_id) is the server-side guard against a
// seat being written twice.
type CourseSelection struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	DealID     uint `gorm:"index"`
	DelegateID uint `gorm:"index"`
	CourseID   uint `gorm:"index"`
}

// Booking is a seat reservation made with the training provider for one
// course, created by staff after invoicing.
type Booking struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	DealID    uint `gorm:"index"`
	CourseID  uint `gorm:"index"`
	Reference string
}

// Booking form status values.
const (
	FormStatusPending = "pending"
	FormStatusSigned  = "signed"
)

// BookingForm is the customer-facing form for a deal: a single-use
// expiring token plus a one-shot pending -> signed status flag.
type BookingForm struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	DealID    uint      `gorm:"index"`
	Token     string    `gorm:"uniqueIndex"`
	ExpiresAt time.Time `gorm:"index"`
	Status    string    // pending | signed
	SignedAt  *time.Time
	SignedBy  string
}
