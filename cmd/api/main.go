package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Fulfillment-api/internal/application/allocation"
	"github.com/jhoicas/Fulfillment-api/internal/application/picking"
	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/application/wave"
	infrakafka "github.com/jhoicas/Fulfillment-api/internal/infrastructure/kafka"
	"github.com/jhoicas/Fulfillment-api/internal/infrastructure/memory"
	"github.com/jhoicas/Fulfillment-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Fulfillment-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Fulfillment-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Fulfillment-api/internal/interfaces/http"
	"github.com/jhoicas/Fulfillment-api/pkg/config"
	"github.com/jhoicas/Fulfillment-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Backend).
		Str("sequence", cfg.Sequence.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner  ports.TxRunner
		pgRunner  *postgres.TxRunner
		sequences ports.SequenceGenerator
		healthy   = func(context.Context) error { return nil }
	)
	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Warn().Msg("store en memoria: el estado se pierde al reiniciar")
		txRunner = memory.NewStore()
		sequences = memory.NewSequences()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		// los códigos salen de la misma tx (nextval), sin segunda conexión
		pgRunner = postgres.NewTxRunner(pool, cfg.DB.LockTimeout())
		txRunner = pgRunner
		healthy = pool.Ping
	}

	if cfg.Sequence.Backend == config.BackendRedis {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		sequences = infraredis.NewSequenceGenerator(rdb, cfg.Redis.Prefix)
		if pgRunner != nil {
			pgRunner.WithSequences(sequences)
		}
	}

	var publisher ports.EventPublisher = ports.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := infrakafka.NewPublisher(infrakafka.NewWriter(cfg.Kafka), log)
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	var recorder ports.Metrics = ports.NoopMetrics{}
	var prom *metrics.Recorder
	if cfg.Metrics.Enabled {
		prom = metrics.New()
		recorder = prom
	}

	allocationUC := allocation.NewUseCase(txRunner, sequences, publisher, recorder, log)
	waveUC := wave.NewUseCase(txRunner, sequences, publisher, recorder, log)
	pickingUC := picking.NewUseCase(txRunner, sequences, publisher, recorder, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestTimeout(cfg.HTTP.RequestTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := healthy(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if prom != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(prom.Registry(), promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AllocationUC: allocationUC,
		WaveUC:       waveUC,
		PickingUC:    pickingUC,
		Actor: httpRouter.ActorConfig{
			JWTSecret:   cfg.JWT.Secret,
			JWTIssuer:   cfg.JWT.Issuer,
			AllowHeader: cfg.JWT.AllowActorHeader,
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
