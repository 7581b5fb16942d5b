package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/praxisdesk/practice-api/internal/email"
	"github.com/praxisdesk/practice-api/internal/repository"
	"github.com/praxisdesk/practice-api/internal/repository/postgres"
	"github.com/praxisdesk/practice-api/pkg/logger"
	"github.com/praxisdesk/practice-api/pkg/messaging"
	redisBroker "github.com/praxisdesk/practice-api/pkg/messaging/redis"
	"github.com/praxisdesk/practice-api/pkg/metrics"
	"github.com/praxisdesk/practice-api/pkg/worker"
)

// workerConfig comes entirely from the environment; the worker ships
// as a standalone container.
type workerConfig struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"praxisdesk"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"praxisdesk"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisURL string `envconfig:"REDIS_URL"`

	SMTPHost     string `envconfig:"SMTP_HOST" required:"true"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	EmailFrom    string `envconfig:"EMAIL_FROM" required:"true"`

	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"15m"`
	ReminderLead int           `envconfig:"REMINDER_LEAD_DAYS" default:"1"`
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(postgres.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var appointments repository.AppointmentRepository = postgres.NewAppointmentRepository(db)
	var patients repository.PatientRepository = postgres.NewPatientRepository(db)

	var broker messaging.Broker
	if cfg.RedisURL != "" {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.RedisURL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     5,
			MinIdleConns: 1,
		}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer broker.Close()
	}

	sender := email.NewSMTPSender(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	})

	m := metrics.NewMetrics("praxisdesk_worker")

	processor := worker.NewReminderProcessor(appointments, patients, sender, broker, worker.ReminderConfig{
		PollInterval: cfg.PollInterval,
		LeadDays:     cfg.ReminderLead,
	}, appLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("shutdown signal received")
		cancel()
	}()

	processor.Start(ctx)
}
