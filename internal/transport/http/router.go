package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tradedash-api/internal/application/dashboard"
	"github.com/tradedash-api/internal/application/otp"
	"github.com/tradedash-api/internal/application/registration"
	"github.com/tradedash-api/internal/application/session"
	"github.com/tradedash-api/internal/config"
	"github.com/tradedash-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/tradedash-api/internal/infrastructure/jwt"
	"github.com/tradedash-api/internal/infrastructure/smtp"
	"github.com/tradedash-api/internal/infrastructure/sns"
	"github.com/tradedash-api/internal/transport/http/handler"
	appmiddleware "github.com/tradedash-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo      *dynamo.AccountRepo
	SessionRepo      *dynamo.SessionRepo
	VerificationRepo *dynamo.VerificationRepo
	PortfolioRepo    *dynamo.PortfolioRepo
	TransactionRepo  *dynamo.TransactionRepo
	NotificationRepo *dynamo.NotificationRepo
	Mailer           smtp.Mailer
	Events           sns.EventPublisher // nil when no topic is configured
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(deps.VerificationRepo, deps.Mailer, otp.Config{
		Length:      cfg.OTPLength,
		TTL:         cfg.OTPTTL,
		MinInterval: cfg.OTPMinInterval,
	})
	regSvc := registration.NewService(registration.Deps{
		Verifications: deps.VerificationRepo,
		Accounts:      deps.AccountRepo,
		Portfolios:    deps.PortfolioRepo,
		Notifications: deps.NotificationRepo,
		Events:        deps.Events,
	}, registration.Config{
		MaxAttempts:      cfg.OTPMaxAttempts,
		DemoStartingCash: cfg.DemoStartingCash,
	})
	sessionSvc := session.NewService(deps.AccountRepo, deps.SessionRepo, deps.JWTProvider, cfg.RefreshTokenTTL)
	dashboardSvc := dashboard.NewService(dashboard.Deps{
		Accounts:      deps.AccountRepo,
		Portfolios:    deps.PortfolioRepo,
		Transactions:  deps.TransactionRepo,
		Notifications: deps.NotificationRepo,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(otpSvc, regSvc, sessionSvc, cfg.OTPDevEcho)
	dashH := handler.NewDashboardHandler(dashboardSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Route("/auth", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/send-otp", authH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/login", authH.Login)
		r.Post("/refresh", authH.Refresh)

		// ── Authenticated ────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Post("/logout", authH.Logout)
			r.Get("/me", authH.Me)
		})
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authMw)
		r.Get("/user", dashH.User)
		r.Get("/portfolio", dashH.Portfolio)
		r.Get("/stats", dashH.Stats)
		r.Get("/transactions", dashH.Transactions)
		r.Get("/notifications", dashH.Notifications)
		r.Put("/notifications/{id}", dashH.MarkNotificationRead)
	})

	return r
}
