package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the ambient pieces the router wires around handlers.
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Limiter        ratelimit.Limiter
	// AuthRateLimit is the per-minute budget for each client on login and
	// registration. Zero disables limiting.
	AuthRateLimit int
}

type Handlers struct {
	Auth       AuthHandler
	Invitation InvitationHandler
	User       UserHandler
	Leave      LeaveHandler
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	authLimit := middleware.RateLimit(opts.Limiter, "auth", opts.AuthRateLimit, time.Minute)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			response.Success(w, map[string]bool{"ok": true})
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit).Post("/login", h.Auth.Login)
			r.With(authLimit).Post("/register-via-invite", h.Auth.RegisterViaInvite)
			r.Route("/oauth/google", func(r chi.Router) {
				r.Get("/", h.Auth.LoginWithGoogle)
				r.Get("/callback", h.Auth.OAuthCallbackGoogle)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/me", func(r chi.Router) {
				r.Get("/balances", h.Leave.MyBalances)
				r.Route("/requests", func(r chi.Router) {
					r.Get("/", h.Leave.MyRequests)
					r.Post("/", h.Leave.CreateRequest)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Leave.GetMyRequest)
						r.Get("/document", h.Leave.GetMyDocument)
					})
				})
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/invites", func(r chi.Router) {
					r.Get("/", h.Invitation.List)
					r.Post("/", h.Invitation.Create)
					r.Post("/{id}/resend", h.Invitation.Resend)
					r.Post("/{id}/revoke", h.Invitation.Revoke)
				})

				r.Get("/users", h.User.List)

				r.Route("/requests", func(r chi.Router) {
					r.Get("/", h.Leave.ListRequests)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/document", h.Leave.GetRequestDocument)
						r.Post("/approve", h.Leave.Approve)
						r.Post("/reject", h.Leave.Reject)
					})
				})

				r.Route("/entitlements/{userId}", func(r chi.Router) {
					r.Get("/", h.Leave.GetEntitlement)
					r.Put("/", h.Leave.SetEntitlement)
				})
			})
		})
	})
	return r
}
