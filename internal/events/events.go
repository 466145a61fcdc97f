package events

import "github.com/traindesk/traindesk/internal/models"

// OnFormSigned is called after a booking-form submission is frozen.
// notify will set this if staff messaging is configured.
var OnFormSigned func(form models.BookingForm)

// OnStageChanged is called by the watch loop when a deal's derived
// fulfillment stage moves.
var OnStageChanged func(dealID uint, stage string)
