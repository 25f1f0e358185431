package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/kues-bloodbank/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса банка крови.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	if h.metrics != nil {
		r.Use(h.metrics.Instrument)
	}
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	limited := func(r chi.Router) chi.Router {
		if h.loginLimit == nil {
			return r
		}
		return r.With(h.loginLimit)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/donors", func(r chi.Router) {
			r.Post("/register", h.Register)
			limited(r).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			limited(r).Post("/forgot-password", h.ForgotPassword)
			r.Get("/search", h.SearchDonors)
		})

		r.Post("/requests", h.SubmitRequest)
		r.Post("/eligibility/preview", h.PreviewEligibility)
		r.Get("/inventory", h.Inventory)
		r.Get("/stats", h.Stats)
		r.Get("/settings", h.Settings)

		r.Route("/donor", func(r chi.Router) {
			r.Use(h.authMiddleware.Require(custommiddleware.RoleDonor))

			r.Get("/dashboard", h.Dashboard)
			r.Get("/profile", h.Profile)
			r.Put("/profile", h.UpdateProfile)
			r.Put("/last-donation", h.UpdateLastDonation)
			r.Get("/requests", h.MatchingRequests)
			r.Post("/requests/{requestID}/donate", h.Donate)
			r.Get("/history", h.History)
			r.Put("/notifications", h.UpdateNotifications)
			r.Put("/password", h.ChangePassword)
		})

		r.Route("/admin", func(r chi.Router) {
			limited(r).Post("/login", h.AdminLogin)
			limited(r).Post("/forgot-password", h.AdminForgotPassword)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware.Require(custommiddleware.RoleAdmin))

				r.Post("/logout", h.Logout)
				r.Get("/stats", h.Stats)
				r.Get("/donors", h.AdminDonors)
				r.Get("/requests", h.AdminRequests)
				r.Post("/requests/{requestID}/fulfill", h.FulfillRequest)
				r.Post("/requests/{requestID}/reject", h.RejectRequest)
				r.Post("/inventory", h.AddInventory)

				r.Route("/settings", func(r chi.Router) {
					r.Put("/content", h.UpdateContent)
					r.Put("/config", h.UpdateConfig)
					r.Put("/about", h.UpdateAbout)
					r.Put("/mission", h.UpdateMission)
					r.Put("/benefits", h.SaveBenefits)
					r.Put("/requirements", h.SaveRequirements)
					r.Put("/contact", h.UpdateContact)
				})

				r.Put("/account/username", h.ChangeAdminUsername)
				r.Put("/account/email", h.ChangeAdminEmail)
				r.Put("/account/password", h.ChangeAdminPassword)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
