package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/traindesk/traindesk/internal/config"
	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/models"
)

// GET /qr/forms/{token}.png - QR of the customer form link, for embedding
// in outbound mail. Scanning opens the booking form directly.
func FormQR(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.NotFound(w, r)
		return
	}
	var form models.BookingForm
	if err := db.Conn().Where("token = ?", token).First(&form).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	png, err := qrcode.Encode(config.C.BaseURL+"/forms/"+token, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
