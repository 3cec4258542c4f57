package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/juho05/log"
	"github.com/justinas/nosurf"
	"github.com/sethvargo/go-limiter/httplimit"
	"github.com/sethvargo/go-limiter/memorystore"

	"github.com/restoka/closing"

	"github.com/restoka/closing/config"
	"github.com/restoka/closing/gate"
)

type sessionCtxKey struct{}

// currentSession returns the session the gate attached to the request.
// It is only non-nil behind a gatePage/gateAPI middleware.
func currentSession(r *http.Request) *gate.Session {
	session, _ := r.Context().Value(sessionCtxKey{}).(*gate.Session)
	return session
}

func withSession(r *http.Request, session *gate.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionCtxKey{}, session))
}

// gatePage guards a browser-facing route. Redirect outcomes become 303s;
// the login page itself is served even without a session.
func (h *Handler) gatePage(roles ...gate.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			outcome := h.Gate.Evaluate(r.Context(), gate.Request{
				Path:          r.URL.Path,
				Host:          r.Host,
				RequiredRoles: roles,
			})
			switch outcome.Decision {
			case gate.Allow:
				next.ServeHTTP(w, withSession(r, outcome.Session))
			case gate.RedirectToLogin:
				if r.URL.Path == "/login" {
					next.ServeHTTP(w, r)
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			case gate.RedirectTo:
				http.Redirect(w, r, outcome.Target, http.StatusSeeOther)
			}
		})
	}
}

// gateAPI guards an API route. Redirect outcomes become JSON errors: the
// front-end performs the navigation itself.
func (h *Handler) gateAPI(roles ...gate.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			outcome := h.Gate.Evaluate(r.Context(), gate.Request{
				Path:          r.URL.Path,
				Host:          r.Host,
				RequiredRoles: roles,
			})
			switch outcome.Decision {
			case gate.Allow:
				next.ServeHTTP(w, withSession(r, outcome.Session))
			case gate.RedirectToLogin:
				respondError(w, ErrNotAuthenticated, http.StatusUnauthorized, nil)
			case gate.RedirectTo:
				respondError(w, ErrForbidden, http.StatusForbidden, nil)
			}
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusResponseWriter) WriteHeader(code int) {
	if s.status >= 200 {
		return
	}
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusResponseWriter) Write(b []byte) (int, error) {
	if s.status < 200 {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusResponseWriter) ReadFrom(r io.Reader) (int64, error) {
	if s.status < 200 {
		s.WriteHeader(http.StatusOK)
	}
	return io.Copy(s.ResponseWriter, r)
}

func (s *statusResponseWriter) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logRequest(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		rw := &statusResponseWriter{ResponseWriter: w}
		start := time.Now()
		defer func() {
			u := r.URL
			u.RawQuery = ""
			u.RawFragment = ""
			log.Tracef("%s %s, status: %d %s, duration: %s", r.Method, u.String(), rw.status, http.StatusText(rw.status), time.Since(start).String())
		}()
		next.ServeHTTP(rw, r)
	}
	return http.HandlerFunc(fn)
}

func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if e, ok := err.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(err)
				}
				w.Header().Set("Connection", "close")
				serverError(w, fmt.Errorf("%v", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func csrf(next http.Handler) http.Handler {
	handler := nosurf.New(next)
	handler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	handler.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, ErrForbidden, http.StatusForbidden, nil)
	}))
	return handler
}

func staticCache(maxAge time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int64(maxAge.Seconds())))
			w.Header().Set("Last-Modified", closing.StartTime.Format(http.TimeFormat))
			if ifModSince, err := time.Parse(http.TimeFormat, r.Header.Get("If-Modified-Since")); err == nil && ifModSince.After(closing.StartTime) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self';style-src 'self';frame-src 'self';script-src 'self'; connect-src 'self';")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
		next.ServeHTTP(w, r)
	})
}

func corsHeaders(next http.Handler) http.Handler {
	handler := cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		MaxAge:           int((15 * time.Minute).Seconds()),
	})
	return handler(next)
}

func rateLimit(tokens int, interval time.Duration) func(next http.Handler) http.Handler {
	store, err := memorystore.New(&memorystore.Config{
		Tokens:   uint64(tokens),
		Interval: interval,
	})
	if err != nil {
		panic("init rate limit store: " + err.Error())
	}
	var headers []string
	if config.BehindProxy() {
		headers = append(headers, "X-Forwarded-For")
	}
	mware, err := httplimit.NewMiddleware(store, httplimit.IPKeyFunc(headers...))
	if err != nil {
		panic("init rate limit middleware: " + err.Error())
	}
	return mware.Handle
}
