package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vetline/internal/auth"
	"vetline/internal/clinic"
	"vetline/internal/config"
	"vetline/internal/http_server/handlers/admin"
	"vetline/internal/http_server/handlers/animals"
	"vetline/internal/http_server/handlers/appointments"
	"vetline/internal/http_server/handlers/catalog"
	"vetline/internal/http_server/handlers/login"
	"vetline/internal/http_server/handlers/logout"
	"vetline/internal/http_server/handlers/profile"
	"vetline/internal/http_server/handlers/register"
	resendEmail "vetline/internal/http_server/handlers/resend_verification_email"
	"vetline/internal/http_server/handlers/reviews"
	"vetline/internal/http_server/handlers/verify"
	rateLimit "vetline/internal/http_server/middleware/ratelimit"
	"vetline/internal/http_server/middleware/sessionauth"
	"vetline/internal/mailer"
	"vetline/internal/rabbitmq"
	"vetline/internal/session"
	"vetline/internal/storage/postgres"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting vetline", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutdown signal received")
		cancel()
	}()

	if err := postgres.Migrate(postgres.URL(cfg)); err != nil {
		log.Error("failed to run migrations", slog.String("err", err.Error()))
		os.Exit(1)
	}

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	mail, closeMail, err := setupMailer(cfg, log)
	if err != nil {
		log.Error("failed to set up mailer", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer closeMail()

	authService := auth.New(log, storage, storage, cfg.Tokens.VerificationTokenSecret, cfg.Tokens.VerificationTokenTTL)
	clinicService := clinic.New(log, storage)

	sessions := session.NewManager(cfg.Session.CookieName, cfg.Session.IdleTTL)
	sessions.StartJanitor(ctx.Done())

	router := setupRouter(cfg, log, authService, clinicService, sessions, mail)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("server stopped gracefully")
	}
}

func setupRouter(
	cfg *config.Config,
	log *slog.Logger,
	authService *auth.Auth,
	clinicService *clinic.Clinic,
	sessions *session.Manager,
	mail mailer.Mailer,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	tokenTTL := cfg.Tokens.VerificationTokenTTL
	tokenSecret := cfg.Tokens.VerificationTokenSecret

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimit.Register()).Post("/register",
			register.New(log, validate, authService, mail, tokenTTL, tokenSecret, cfg.BaseURL),
		)
		r.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, authService, sessions),
		)
		r.With(rateLimit.Logout()).Post("/logout",
			logout.New(log, sessions),
		)
		r.With(rateLimit.Verify()).Get("/verify",
			verify.New(log, authService),
		)
		r.With(rateLimit.ResendVerificationEmail()).Post("/verify/resend",
			resendEmail.New(log, validate, authService, mail, tokenTTL, tokenSecret, cfg.BaseURL),
		)
	})

	// public pages
	r.Get("/products", catalog.Products(log, clinicService))
	r.Get("/services", catalog.Services(log, clinicService))
	r.Get("/reviews", reviews.List(log, clinicService))

	// signed-in area
	r.Group(func(r chi.Router) {
		r.Use(sessionauth.RequireUser(sessions))

		r.Get("/profile", profile.Get(log, authService))
		r.Post("/profile", profile.Update(log, validate, authService, sessions, mail, tokenTTL, tokenSecret, cfg.BaseURL))

		r.Get("/animals", animals.List(log, clinicService))
		r.Post("/animals", animals.Create(log, validate, clinicService))
		r.Put("/animals/{id}", animals.Update(log, validate, clinicService))
		r.Delete("/animals/{id}", animals.Delete(log, clinicService))

		r.Get("/appointments", appointments.List(log, clinicService))
		r.Post("/appointments", appointments.Book(log, validate, clinicService))
		r.Put("/appointments/{id}", appointments.Update(log, validate, clinicService))
		r.Delete("/appointments/{id}", appointments.Cancel(log, clinicService))

		r.Post("/reviews", reviews.Create(log, validate, clinicService))
	})

	// back-office
	r.Route("/admin", func(r chi.Router) {
		r.Use(sessionauth.RequireAdmin(sessions))

		r.Get("/stats", admin.Stats(log, clinicService))
		r.Get("/users", admin.Users(log, clinicService))
		r.Delete("/users/{id}", admin.DeleteUser(log, clinicService))
		r.Get("/animals", admin.Animals(log, clinicService))
		r.Get("/appointments", admin.Appointments(log, clinicService))
		r.Post("/products", admin.CreateProduct(log, validate, clinicService))
		r.Put("/products/{id}", admin.UpdateProduct(log, validate, clinicService))
		r.Patch("/products/{id}/stock", admin.UpdateStock(log, validate, clinicService))
		r.Delete("/products/{id}", admin.DeleteProduct(log, clinicService))
	})

	return r
}

// setupMailer picks the delivery channel from config. The choice is made
// once at startup; handlers only ever see the Mailer interface.
func setupMailer(cfg *config.Config, log *slog.Logger) (mailer.Mailer, func(), error) {
	switch cfg.Mailer.Mode {
	case "smtp":
		m := mailer.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		return m, func() {}, nil
	case "queue":
		broker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			return nil, nil, err
		}
		return mailer.NewQueue(broker), broker.Close, nil
	default:
		return mailer.NewLog(log), func() {}, nil
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
