package http

import (
	"net/http"
	"time"

	"github.com/codey22/notespace/internal/config"
	"github.com/codey22/notespace/internal/http/handler"
	mw "github.com/codey22/notespace/internal/http/middleware"
	"github.com/codey22/notespace/internal/logging"
	"github.com/codey22/notespace/internal/metrics"
	"github.com/codey22/notespace/internal/note"
	"github.com/codey22/notespace/internal/prefs"
	"github.com/codey22/notespace/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

const verifyIdle = 15 * time.Minute

func NewRouter(cfg config.Config, db *gorm.DB, tokens *session.Tokens, m *metrics.Metrics, log logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Instrument(m, log))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	cookies := &session.Cookies{Tokens: tokens, Secure: cfg.CookieSecure}
	r.Use(cookies.Issue)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	// The cookie itself is set by cookies.Issue.
	r.Get("/session", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	requireOwner := cookies.RequireOwner(handler.Fail(log))

	noteSvc := &note.Service{DB: db}
	if m != nil {
		noteSvc.OnSlugCollision = m.SlugCollision
	}
	noteH := &handler.NoteHandler{Svc: noteSvc, Metrics: m, Log: log}

	throttle := mw.NewThrottle(cfg.VerifyRate, cfg.VerifyBurst, verifyIdle)
	limitVerify := throttle.Middleware(
		func(r *http.Request) string {
			owner, _ := session.OwnerIDFromContext(r.Context())
			return owner + "/" + handler.SlugParam(r)
		},
		func(w http.ResponseWriter, r *http.Request) {
			handler.Fail(log)(w, r, handler.ErrTooManyAttempts)
		},
	)

	r.Route("/note", func(r chi.Router) {
		r.Use(requireOwner)

		r.Get("/", noteH.List)
		r.Post("/", noteH.Create)

		r.Get("/{slug}", noteH.Get)
		r.Put("/{slug}", noteH.Update)
		r.Delete("/{slug}", noteH.Delete)

		r.Post("/{slug}/password", noteH.SetPassword)
		r.Delete("/{slug}/password", noteH.ClearPassword)
		r.With(limitVerify).Post("/{slug}/verify", noteH.Verify)
	})

	prefsH := &handler.PrefsHandler{Svc: &prefs.Service{DB: db}, Log: log}
	r.Route("/user/preferences", func(r chi.Router) {
		r.Use(requireOwner)

		r.Get("/", prefsH.Get)
		r.Put("/", prefsH.Update)
	})

	return r
}
