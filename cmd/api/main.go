package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/mshekhar/portfolio-api/config"
	healthHandler "github.com/mshekhar/portfolio-api/internal/handler/health"
	messageHandler "github.com/mshekhar/portfolio-api/internal/handler/message"
	"github.com/mshekhar/portfolio-api/internal/email"
	"github.com/mshekhar/portfolio-api/internal/middleware"
	"github.com/mshekhar/portfolio-api/internal/repository/postgres"
	"github.com/mshekhar/portfolio-api/internal/router"
	deliveryService "github.com/mshekhar/portfolio-api/internal/service/delivery"
	messageService "github.com/mshekhar/portfolio-api/internal/service/message"
	"github.com/mshekhar/portfolio-api/pkg/logger"
	"github.com/mshekhar/portfolio-api/pkg/messaging"
	redisBroker "github.com/mshekhar/portfolio-api/pkg/messaging/redis"
	"github.com/mshekhar/portfolio-api/pkg/metrics"
	"github.com/mshekhar/portfolio-api/pkg/ratelimit"
	"github.com/mshekhar/portfolio-api/pkg/retry"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(postgres.DBConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	messageRepo := postgres.NewMessageRepository(base)
	templateRepo := postgres.NewTemplateRepository(base)
	emailLogRepo := postgres.NewEmailLogRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	analyticsRepo := postgres.NewAnalyticsRepository(base)

	provider, err := email.NewProvider(email.Config{
		Provider:             cfg.Email.Provider,
		PostmarkServerToken:  cfg.Email.PostmarkServerToken,
		PostmarkAccountToken: cfg.Email.PostmarkAccountToken,
		SMTPHost:             cfg.Email.SMTPHost,
		SMTPPort:             cfg.Email.SMTPPort,
		SMTPUser:             cfg.Email.SMTPUser,
		SMTPPassword:         cfg.Email.SMTPPassword,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure email provider")
	}

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	appMetrics := metrics.NewMetrics("portfolio")

	deliverySvc := deliveryService.NewService(deliveryService.Deps{
		Messages:  messageRepo,
		Templates: templateRepo,
		EmailLogs: emailLogRepo,
		Records:   notificationRepo,
		Analytics: analyticsRepo,
		Provider:  provider,
		Limiter:   ratelimit.New(cfg.RateLimit.MaxPerRecipient, cfg.RateLimit.Window),
		Retrier:   retry.New(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, retry.WithLogger(appLogger.Zerolog())),
		Broker:    broker,
		Metrics:   appMetrics,
		Logger:    appLogger,
		Settings: deliveryService.Settings{
			FromAddress:  cfg.Email.FromAddress,
			AdminEmail:   cfg.Email.AdminEmail,
			CompanyName:  cfg.Email.CompanyName,
			CompanyEmail: cfg.Email.CompanyEmail,
			AdminURL:     cfg.Email.AdminURL,
			SendTimeout:  cfg.Email.SendTimeout,
		},
	})

	messageSvc := messageService.NewService(messageRepo, deliverySvc, appLogger)

	messageH := messageHandler.NewHandler(messageSvc, deliverySvc)
	healthH := healthHandler.NewHandler(db)

	r := router.NewRouter(messageH, healthH, router.Config{
		SubmitRate:    rate.Limit(cfg.RateLimit.SubmitRPS),
		SubmitBurst:   cfg.RateLimit.SubmitBurst,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "portfolio_http",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited")
}
