package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch/internal/config"
	v1 "github.com/shenikar/emergency_dispatch/internal/handler/http/v1"
	"github.com/shenikar/emergency_dispatch/internal/metrics"
	"github.com/shenikar/emergency_dispatch/internal/notify"
	"github.com/shenikar/emergency_dispatch/internal/repository"
	"github.com/shenikar/emergency_dispatch/internal/repository/memory"
	"github.com/shenikar/emergency_dispatch/internal/scheduler"
	"github.com/shenikar/emergency_dispatch/internal/seed"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/shenikar/emergency_dispatch/internal/voice"
	"github.com/shenikar/emergency_dispatch/internal/webhook"
	natsclient "github.com/shenikar/emergency_dispatch/pkg/nats"
	"github.com/shenikar/emergency_dispatch/pkg/postgres"
	redisclient "github.com/shenikar/emergency_dispatch/pkg/redis"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispatch HTTP API and lifecycle timers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, log)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
}

// repositories - набор хранилищ выбранного бэкенда
type repositories struct {
	incidents service.IncidentRepository
	vehicles  service.VehicleRepository
	hospitals service.HospitalRepository
	feedback  service.FeedbackRepository
	close     func()
}

func openRepositories(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*repositories, error) {
	if cfg.Store == config.StoreMemory {
		store := memory.NewStore()
		if err := store.Seed(seed.Vehicles(), seed.Hospitals()); err != nil {
			return nil, fmt.Errorf("failed to seed memory store: %w", err)
		}
		log.Info("Using in-memory store with reference fleet")
		return &repositories{
			incidents: store.Incidents(),
			vehicles:  store.Vehicles(),
			hospitals: store.Hospitals(),
			feedback:  store.Feedback(),
			close:     func() {},
		}, nil
	}

	// Запуск миграций
	if !skipMigrations {
		if err := runMigrations(cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}
	log.Info("Successfully connected to PostgreSQL")

	return &repositories{
		incidents: repository.NewIncidentRepository(dbpool),
		vehicles:  repository.NewVehicleRepository(dbpool),
		hospitals: repository.NewHospitalRepository(dbpool),
		feedback:  repository.NewFeedbackRepository(dbpool),
		close:     dbpool.Close,
	}, nil
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close()

	g, gctx := errgroup.WithContext(ctx)

	hub := notify.NewHub(log)
	publishers := notify.Multi{hub}
	deps := service.Dependencies{
		Incidents: repos.incidents,
		Vehicles:  repos.vehicles,
		Hospitals: repos.hospitals,
	}

	// Redis: кеш инцидентов, очереди вебхуков и голосовых вызовов
	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisPool)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")

		deps.Cache = repository.NewIncidentCache(redisClient, cfg.CacheTTL)
		publishers = append(publishers, startWebhooks(gctx, g, redisClient, cfg, log)...)
		deps.Voice = startVoice(gctx, g, redisClient, cfg, log)
	}

	if cfg.NATSURL != "" {
		conn, err := natsclient.NewConn(cfg.NATSURL, log)
		if err != nil {
			return err
		}
		defer conn.Drain()
		publishers = append(publishers, notify.NewNATSPublisher(conn, cfg.NATSSubjectPrefix))
		log.WithField("prefix", cfg.NATSSubjectPrefix).Info("Publishing lifecycle events to NATS")
	}
	deps.Events = publishers

	recorder, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	deps.Metrics = recorder

	tasks := scheduler.New()
	deps.Tasks = tasks

	dispatchService := service.NewDispatchService(deps, log, cfg)
	feedbackService := service.NewFeedbackService(repos.feedback, repos.incidents, log)

	// Таймеры живут в памяти процесса, после рестарта их нужно перепланировать
	if _, err := dispatchService.Resume(ctx); err != nil {
		return err
	}

	handler := v1.NewHandler(dispatchService, feedbackService, hub, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: router,
	}

	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting HTTP server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Received shutdown signal, shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		tasks.Stop()
		hub.Close()
		if err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Info("Server gracefully stopped")
		return nil
	})

	return g.Wait()
}

// startWebhooks запускает воркер доставки вебхуков, если задан адрес получателя
func startWebhooks(ctx context.Context, g *errgroup.Group, client *redis.Client, cfg *config.Config, log *logrus.Logger) []notify.Publisher {
	if cfg.WebhookURL == "" {
		return nil
	}
	worker := webhook.NewWebhookWorker(client, log, cfg)
	g.Go(func() error {
		worker.Run(ctx)
		return nil
	})
	return []notify.Publisher{webhook.NewRedisWebhookPublisher(client, cfg.WebhookQueueLimit)}
}

// startVoice запускает воркер голосовых вызовов, если настроен Twilio
func startVoice(ctx context.Context, g *errgroup.Group, client *redis.Client, cfg *config.Config, log *logrus.Logger) voice.Dispatcher {
	if !cfg.VoiceEnabled() {
		log.Warn("Voice dispatch disabled: Twilio credentials are not set")
		return voice.Nop{}
	}
	caller := voice.NewTwilioCaller(cfg.TwilioAccountSID, cfg.TwilioAuthToken,
		cfg.TwilioFlowSID, cfg.TwilioPhoneNumber, cfg.VoiceTimeout)
	worker := voice.NewWorker(client, log, caller, cfg.VoiceRatePerSecond)
	g.Go(func() error {
		worker.Run(ctx)
		return nil
	})
	return voice.NewRedisDispatcher(client)
}
