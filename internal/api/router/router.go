// Package router assembles the HTTP surface: public auth and health
// endpoints plus the session-scoped booking, appointments, customer and
// card-vault routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/loftgolf/booking-platform/internal/http/handlers"
	httpmiddleware "github.com/loftgolf/booking-platform/internal/http/middleware"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger       *logging.Logger
	Sessions     *handlers.SessionRegistry
	Auth         *handlers.AuthHandler
	Wizard       *handlers.WizardHandler
	Appointments *handlers.AppointmentsHandler
	Customer     *handlers.CustomerHandler
	Cards        *handlers.CardsHandler

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// AuthRateLimit throttles the credential endpoints. Optional.
	AuthRateLimit *httpmiddleware.RateLimiter
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Route("/api/auth", func(auth chi.Router) {
			if cfg.AuthRateLimit != nil {
				auth.Use(cfg.AuthRateLimit.Middleware)
			}
			auth.Post("/login", cfg.Auth.Login)
			auth.Post("/register", cfg.Auth.Register)
			auth.Post("/impersonate", cfg.Auth.Impersonate)
		})
	})

	// Session-scoped endpoints.
	r.Group(func(private chi.Router) {
		private.Use(cfg.Sessions.Require)

		private.Post("/api/auth/logout", cfg.Auth.Logout)

		private.Route("/api/booking", func(b chi.Router) {
			b.Get("/state", cfg.Wizard.State)
			b.Post("/catalog", cfg.Wizard.ReloadCatalog)
			b.Post("/location", cfg.Wizard.SelectLocation)
			b.Post("/service", cfg.Wizard.SelectService)
			b.Post("/guests", cfg.Wizard.SetGuests)
			b.Post("/duration", cfg.Wizard.SetDuration)
			b.Post("/date", cfg.Wizard.SetDate)
			b.Post("/bay", cfg.Wizard.SelectBay)
			b.Post("/slots/refresh", cfg.Wizard.RefreshSlots)
			b.Post("/slot", cfg.Wizard.SelectSlot)
			b.Post("/notes", cfg.Wizard.SetNotes)
			b.Post("/next", cfg.Wizard.Next)
			b.Post("/back", cfg.Wizard.Back)
			b.Post("/confirm", cfg.Wizard.Confirm)
			b.Post("/reset", cfg.Wizard.Reset)
		})

		private.Route("/api/appointments", func(a chi.Router) {
			a.Get("/", cfg.Appointments.List)
			a.Get("/{id}", cfg.Appointments.Get)
			a.Post("/{id}/cancel", cfg.Appointments.Cancel)
		})

		private.Get("/api/customer", cfg.Customer.Profile)
		private.Get("/api/customer/packages", cfg.Customer.Packages)
		private.Get("/api/prepayservices", cfg.Customer.PrepayCatalog)

		if cfg.Cards != nil {
			private.Route("/api/cards", func(c chi.Router) {
				c.Post("/", cfg.Cards.Add)
				c.Get("/", cfg.Cards.List)
				c.Delete("/{id}", cfg.Cards.Delete)
			})
		}
	})

	return r
}
