package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/models"
)

var (
	ErrFormNotFound      = errors.New("booking form not found")
	ErrFormExpired       = errors.New("booking form link has expired")
	ErrFormAlreadySigned = errors.New("booking form already signed")
)

// CreateBookingForm issues a fresh pending form for the deal with a
// single-use expiring token. Earlier pending forms are expired so only
// one live link exists per deal.
func CreateBookingForm(dealID uint, ttl time.Duration) (models.BookingForm, error) {
	var deal models.Deal
	if err := db.Conn().First(&deal, dealID).Error; err != nil {
		return models.BookingForm{}, err
	}

	if err := db.Conn().Model(&models.BookingForm{}).
		Where("deal_id = ? AND status = ?", dealID, models.FormStatusPending).
		Update("expires_at", time.Now()).Error; err != nil {
		return models.BookingForm{}, err
	}

	form := models.BookingForm{
		DealID:    dealID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl),
		Status:    models.FormStatusPending,
	}
	if err := db.Conn().Create(&form).Error; err != nil {
		return models.BookingForm{}, err
	}
	return form, nil
}

// FormByToken resolves a customer token to its live pending form.
func FormByToken(token string) (models.BookingForm, error) {
	var form models.BookingForm
	if err := db.Conn().Where("token = ?", token).First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BookingForm{}, ErrFormNotFound
		}
		return models.BookingForm{}, err
	}
	if form.Status == models.FormStatusSigned {
		return form, ErrFormAlreadySigned
	}
	if time.Now().After(form.ExpiresAt) {
		return form, ErrFormExpired
	}
	return form, nil
}
