package handlers

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/restoka/closing/config"
)

func (h *Handler) registerStaticRoutes() {
	dir := config.StaticDir()
	if dir == "" {
		return
	}
	h.Router.With(staticCache(24 * time.Hour)).Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
}

// home sends an authenticated actor to their role's landing view.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	session := currentSession(r)
	http.Redirect(w, r, session.Role.Home(), http.StatusSeeOther)
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	// An already authenticated actor has no business on the login page.
	if session := currentSession(r); session != nil {
		http.Redirect(w, r, session.Role.Home(), http.StatusSeeOther)
		return
	}
	h.serveShell(w, r)
}

// appShell serves the single-page front-end. All view state beyond the
// gate decision lives client-side.
func (h *Handler) appShell(w http.ResponseWriter, r *http.Request) {
	h.serveShell(w, r)
}

func (h *Handler) serveShell(w http.ResponseWriter, r *http.Request) {
	dir := config.StaticDir()
	if dir == "" {
		notFound(w)
		return
	}
	http.ServeFile(w, r, filepath.Join(dir, "index.html"))
}
