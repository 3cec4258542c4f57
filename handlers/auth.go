package handlers

import (
	"net/http"

	"github.com/justinas/nosurf"
)

// GET /api/csrf
//
// The front-end fetches a token once and attaches it to every mutating
// request as X-CSRF-Token.
func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{nosurf.Token(r)})
}

// POST /api/login
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeAndValidateBody[struct {
		UserID string `json:"userId" validate:"required"`
		PIN    string `json:"pin" validate:"required,len=4,number"`
	}](w, r)
	if !ok {
		return
	}
	session, err := h.AuthService.Login(r.Context(), body.UserID, body.PIN)
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusOK, session)
}

// POST /api/logout
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context()); err != nil {
		serverError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// GET /api/session
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, currentSession(r))
}

// POST /api/session/store
func (h *Handler) selectStore(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeAndValidateBody[struct {
		StoreID string `json:"storeId" validate:"required"`
	}](w, r)
	if !ok {
		return
	}
	session, err := h.AuthService.SelectStore(r.Context(), currentSession(r), body.StoreID)
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusOK, session)
}
