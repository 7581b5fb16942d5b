package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/praxisdesk/practice-api/internal/assistant"
	"github.com/praxisdesk/practice-api/internal/config"
	appointmentHandler "github.com/praxisdesk/practice-api/internal/handler/appointment"
	authHandler "github.com/praxisdesk/practice-api/internal/handler/auth"
	billingHandler "github.com/praxisdesk/practice-api/internal/handler/billing"
	chatHandler "github.com/praxisdesk/practice-api/internal/handler/chat"
	documentHandler "github.com/praxisdesk/practice-api/internal/handler/document"
	healthHandler "github.com/praxisdesk/practice-api/internal/handler/health"
	patientHandler "github.com/praxisdesk/practice-api/internal/handler/patient"
	scheduleHandler "github.com/praxisdesk/practice-api/internal/handler/schedule"
	"github.com/praxisdesk/practice-api/internal/middleware"
	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository"
	"github.com/praxisdesk/practice-api/internal/repository/memory"
	"github.com/praxisdesk/practice-api/internal/repository/postgres"
	"github.com/praxisdesk/practice-api/internal/router"
	appointmentService "github.com/praxisdesk/practice-api/internal/service/appointment"
	authService "github.com/praxisdesk/practice-api/internal/service/auth"
	billingService "github.com/praxisdesk/practice-api/internal/service/billing"
	calendarService "github.com/praxisdesk/practice-api/internal/service/calendar"
	chatService "github.com/praxisdesk/practice-api/internal/service/chat"
	documentService "github.com/praxisdesk/practice-api/internal/service/document"
	patientService "github.com/praxisdesk/practice-api/internal/service/patient"
	"github.com/praxisdesk/practice-api/pkg/auth"
	"github.com/praxisdesk/practice-api/pkg/logger"
	"github.com/praxisdesk/practice-api/pkg/messaging"
	redisBroker "github.com/praxisdesk/practice-api/pkg/messaging/redis"
	"github.com/praxisdesk/practice-api/pkg/metrics"
	"github.com/praxisdesk/practice-api/pkg/security"
)

const version = "1.0.0"

type repositories struct {
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	documents    repository.DocumentRepository
	templates    repository.TemplateRepository
	chats        repository.ChatRepository
	users        repository.UserRepository
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	repos, cleanup, err := buildRepositories(cfg, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer cleanup()

	m := metrics.NewMetrics("praxisdesk")

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     10,
			MinIdleConns: 2,
		}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer broker.Close()
	}

	var assistantClient assistant.Client
	if cfg.Gemini.APIKey != "" {
		assistantClient, err = assistant.NewGeminiClient(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create assistant client")
		}
		defer assistantClient.Close()
	} else {
		assistantClient = assistant.Unavailable()
	}

	tokens := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	hasher := security.NewBcryptHasher(0)

	monthStart := config.WeekStart(cfg.Calendar.MonthWeekStart, time.Monday)
	weekStart := config.WeekStart(cfg.Calendar.WeekWeekStart, time.Sunday)

	patientSvc := patientService.NewService(repos.patients)
	appointmentSvc := appointmentService.NewService(repos.appointments, repos.patients, broker, m, appLogger.Zerolog())
	if err := appointmentSvc.SyncAllNextAppointments(context.Background(), model.NewISODate(time.Now())); err != nil {
		log.Fatal().Err(err).Msg("failed to sync next appointments")
	}
	calendarSvc := calendarService.NewService(monthStart)
	chatSvc := chatService.NewService(repos.chats, repos.patients, assistantClient, m, appLogger.Zerolog())
	documentSvc := documentService.NewService(repos.documents, repos.templates, repos.patients)
	billingSvc := billingService.NewService(billingService.Config{
		SecretKey:  cfg.Stripe.SecretKey,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
	})
	authSvc := authService.NewService(repos.users, hasher, tokens, cfg.JWT.Expiry())

	authMW := middleware.NewAuthMiddleware(tokens)

	r := router.New(authMW, router.Config{
		RateLimiter:   middleware.DefaultRateLimiterConfig(),
		CORS:          middleware.DefaultCORSConfig(),
		Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		MetricsPrefix: "praxisdesk_http",
	})

	ah := authHandler.NewHandler(authSvc)
	r.Public(
		healthHandler.NewHandler(version),
		ah,
	)
	r.Protected(
		patientHandler.NewHandler(patientSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		scheduleHandler.NewHandler(calendarSvc, appointmentSvc, repos.patients).WithWeekStart(weekStart),
		chatHandler.NewHandler(chatSvc),
		documentHandler.NewHandler(documentSvc),
		billingHandler.NewHandler(billingSvc),
		protectedAuthRoutes{ah},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
}

// protectedAuthRoutes adapts the auth handler's profile endpoints to
// the router's Handler interface.
type protectedAuthRoutes struct {
	h *authHandler.Handler
}

func (p protectedAuthRoutes) RegisterRoutes(r *gin.RouterGroup) {
	p.h.RegisterProtectedRoutes(r)
}

func buildRepositories(cfg *config.Config, appLogger *logger.Logger) (*repositories, func(), error) {
	switch cfg.Store.Backend {
	case "postgres":
		db, err := postgres.NewDB(cfg.Database.Postgres())
		if err != nil {
			return nil, nil, err
		}
		return &repositories{
			patients:     postgres.NewPatientRepository(db),
			appointments: postgres.NewAppointmentRepository(db),
			documents:    postgres.NewDocumentRepository(db),
			templates:    postgres.NewTemplateRepository(db),
			chats:        postgres.NewChatRepository(db),
			users:        postgres.NewUserRepository(db),
		}, func() { db.Close() }, nil

	case "memory", "":
		repos := &repositories{
			patients:     memory.NewPatientRepository(),
			appointments: memory.NewAppointmentRepository(),
			documents:    memory.NewDocumentRepository(),
			templates:    memory.NewTemplateRepository(),
			chats:        memory.NewChatRepository(),
			users:        memory.NewUserRepository(),
		}
		if cfg.Store.Seed {
			if err := memory.Seed(context.Background(), repos.patients, repos.appointments, repos.templates, time.Now()); err != nil {
				return nil, nil, err
			}
			appLogger.Info("seeded demo data")
		}
		return repos, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
