package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/traindesk/traindesk/internal/docgen"
)

// GET /admin/deals/{id}/booking-form.xlsx - the frozen booking form as a
// workbook. Only available once the form is signed.
func DealDocument(w http.ResponseWriter, r *http.Request) {
	deal, err := dealFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	f, err := docgen.BookingFormWorkbook(deal.ID)
	if err != nil {
		if errors.Is(err, docgen.ErrFormNotSigned) {
			writeError(w, http.StatusConflict, "the booking form has not been signed yet")
			return
		}
		writeServiceError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="booking-form-%d.xlsx"`, deal.ID))
	if err := f.Write(w); err != nil {
		http.Error(w, "failed to write workbook", http.StatusInternalServerError)
	}
}
