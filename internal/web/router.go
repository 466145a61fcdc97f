package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/traindesk/traindesk/internal/handlers"
)

func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Health)

	// Customer booking form (token-gated, single-use)
	r.Route("/forms/{token}", func(fr chi.Router) {
		fr.Get("/", handlers.FormShow)
		fr.Post("/delegates", handlers.FormAddDelegate)
		fr.Post("/delegates/remove", handlers.FormRemoveDelegate)
		fr.Post("/toggle", handlers.FormToggleCourse)
		fr.Post("/validate", handlers.FormValidate)
		fr.Post("/submit", handlers.FormSubmit)
	})

	// QR image of a form link
	r.Get("/qr/forms/{token}.png", handlers.FormQR)

	// --- Staff routes (with login + guard) ---
	r.Route("/admin", func(ar chi.Router) {
		// Auth endpoints (public)
		ar.Post("/login", handlers.StaffLogin)
		ar.Post("/logout", handlers.StaffLogout)

		// Guarded pipeline
		ar.Group(func(ag chi.Router) {
			ag.Use(handlers.RequireStaff)

			ag.Post("/deals", handlers.DealCreate)
			ag.Get("/deals", handlers.DealList)
			ag.Get("/deals/{id}", handlers.DealShow)

			ag.Post("/deals/{id}/form", handlers.DealCreateForm)
			ag.Post("/deals/{id}/invoice", handlers.DealInvoice)
			ag.Post("/deals/{id}/bookings", handlers.DealAddBooking)
			ag.Post("/deals/{id}/joining-instructions", handlers.DealJoiningInstructions)

			ag.Get("/deals/{id}/booking-form.xlsx", handlers.DealDocument)
		})
	})

	return r
}
