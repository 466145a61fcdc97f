package notify

import (
	"fmt"

	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/events"
	"github.com/traindesk/traindesk/internal/models"
	"github.com/traindesk/traindesk/internal/services"
)

func init() {
	events.OnFormSigned = func(form models.BookingForm) {
		var deal models.Deal
		if err := db.Conn().First(&deal, form.DealID).Error; err != nil {
			return
		}

		snap, err := services.LoadSnapshot(deal.ID)
		if err != nil {
			return
		}

		msg := fmt.Sprintf("Booking form signed for %s (deal #%d).\nNext: %s",
			deal.Company, deal.ID, services.NextAction(snap))
		_ = NewClient().Send(msg)
	}
}
