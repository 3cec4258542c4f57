package handlers

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/restoka/closing/gate"
	"github.com/restoka/closing/services"
)

type Handler struct {
	Router         chi.Router
	SessionManager *scs.SessionManager
	Gate           *gate.Gate

	AuthService      services.AuthService
	ClosingService   services.ClosingService
	DirectoryService services.DirectoryService
	LockWatcher      *services.LockWatcher
}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Router.ServeHTTP(w, r)
}
