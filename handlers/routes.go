package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/restoka/closing/gate"
)

func (h *Handler) registerMiddlewares() {
	h.Router.Use(recoverPanic)
	h.Router.Use(middleware.RealIP)
	h.Router.Use(middleware.RequestID)
	h.Router.Use(middleware.Timeout(60 * time.Second))
	h.Router.Use(logRequest)
	h.Router.Use(securityHeaders)
	h.Router.Use(corsHeaders)
}

func (h *Handler) RegisterRoutes() {
	if h.Router == nil {
		h.Router = chi.NewRouter()
	}
	h.registerMiddlewares()

	h.registerStaticRoutes()

	h.Router.Group(func(r chi.Router) {
		r.Use(h.SessionManager.LoadAndSave)

		r.With(h.gatePage()).Get("/", h.home)
		r.With(h.gatePage()).Get("/login", h.loginPage)
		r.With(h.gatePage()).Get("/cashier", h.appShell)
		r.With(h.gatePage()).Get("/admin", h.appShell)
		r.With(h.gatePage()).Get("/admin/users", h.appShell)
		r.With(h.gatePage()).Get("/admin/verify", h.appShell)
	})

	h.Router.Route("/api", func(r chi.Router) {
		r.Use(h.SessionManager.LoadAndSave)
		r.Use(csrf)

		r.Get("/csrf", h.csrfToken)
		r.With(rateLimit(5, time.Minute)).Post("/login", h.login)
		r.With(h.gateAPI()).Post("/logout", h.logout)

		r.With(h.gateAPI()).Get("/session", h.session)
		r.With(h.gateAPI(gate.RoleManager, gate.RoleAdmin)).Post("/session/store", h.selectStore)

		r.With(h.gateAPI()).Get("/stores", h.listStores)

		r.Route("/users", func(r chi.Router) {
			r.Use(h.gateAPI(gate.RoleAdmin))
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Patch("/{id}", h.updateUser)
		})

		r.Route("/closings", func(r chi.Router) {
			r.With(h.gateAPI()).Get("/", h.getClosing)
			r.With(h.gateAPI()).Post("/", h.saveClosing)
			r.With(h.gateAPI()).Get("/watch", h.watchLock)
			r.With(h.gateAPI()).Post("/{id}/unlock", h.unlockClosing)
			r.With(h.gateAPI(gate.RoleManager, gate.RoleAdmin)).Patch("/{id}", h.patchClosing)
			r.With(h.gateAPI(gate.RoleManager, gate.RoleAdmin)).Post("/{id}/verify", h.verifyClosing)
		})
	})
}
