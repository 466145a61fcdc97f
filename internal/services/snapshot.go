package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/models"
)

// LoadSnapshot rebuilds the fulfillment snapshot for one deal from the
// underlying records. The course/booking counts come back in a single
// round-trip instead of two COUNT queries.
func LoadSnapshot(dealID uint) (Snapshot, error) {
	var deal models.Deal
	if err := db.Conn().First(&deal, dealID).Error; err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		InvoiceNumber:           deal.InvoiceNumber,
		InvoiceDeferred:         deal.InvoiceDeferred,
		PaymentLinkSent:         deal.PaymentLinkSentAt != nil,
		JoiningInstructionsSent: deal.JoiningInstructionsSentAt != nil,
	}

	// The latest form wins; abandoned earlier forms stay in the table but
	// never drive classification.
	var form models.BookingForm
	err := db.Conn().Where("deal_id = ?", dealID).Order("id desc").First(&form).Error
	switch {
	case err == nil:
		snap.HasForm = true
		snap.FormPending = form.Status == models.FormStatusPending
		snap.FormSigned = form.Status == models.FormStatusSigned
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Snapshot{}, err
	}

	var agg struct {
		Courses  int
		Bookings int
	}
	if err := db.Conn().Raw(`SELECT
			(SELECT COUNT(*) FROM courses  WHERE deal_id = ?) AS courses,
			(SELECT COUNT(*) FROM bookings WHERE deal_id = ?) AS bookings`,
		dealID, dealID).Scan(&agg).Error; err != nil {
		return Snapshot{}, err
	}
	snap.CoursesRequiringBooking = agg.Courses
	snap.BookingsCreated = agg.Bookings

	return snap, nil
}
