package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"

	"stayhost/internal/app/application"
	roomsapp "stayhost/internal/app/handlers/rooms"
	"stayhost/internal/app/policies"
	"stayhost/internal/app/validation"
	"stayhost/internal/domain/availability"
	"stayhost/internal/infra/broker/kafka"
	"stayhost/internal/infra/config"
	ginserver "stayhost/internal/infra/http/gin"
	"stayhost/internal/infra/obs"
	infraoutbox "stayhost/internal/infra/outbox"
	"stayhost/internal/infra/storage/s3"
)

func main() {
	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := serve(cfg, logger); err != nil {
		logger.Error("stayhost stopped", "error", err)
		os.Exit(1)
	}
}

func serve(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()
	metrics := obs.NewMetrics()

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	locker, err := openLocker(ctx, cfg, st)
	if err != nil {
		return err
	}

	exporter, err := openExporter(cfg, logger, st)
	if err != nil {
		return err
	}

	var (
		producer infraoutbox.Producer = infraoutbox.LogProducer{Logger: logger}
		consumer *kafka.Consumer
	)
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := kafka.NewProducer(cfg.KafkaBrokers, "stayhost")
		if err != nil {
			return err
		}
		st.closers = append(st.closers, func() { _ = kp.Close() })
		producer = kp

		projector := kafka.BookingProjector{Bookings: st.bookings, Inbox: st.inbox, Logger: logger, Observer: metrics}
		consumer, err = kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroup, projector, logger)
		if err != nil {
			return err
		}
		st.closers = append(st.closers, func() { _ = consumer.Close() })
	} else {
		logger.Warn("KAFKA_BROKERS not set; room events are only logged and bookings are not projected")
	}

	worker := infraoutbox.NewWorker(st.source, producer)
	worker.Logger = logger
	worker.Observer = metrics
	worker.Interval = cfg.OutboxInterval
	worker.TopicPrefix = cfg.KafkaTopicPrefix
	worker.Source = "app://stayhost"
	worker.Backoff = []time.Duration{time.Second, 5 * time.Second, 30 * time.Second, 2 * time.Minute}

	app := application.New(application.Options{
		Logger:      logger,
		Observer:    metrics,
		Validator:   validation.New(),
		UoW:         st.uow,
		Locker:      locker,
		Idempotency: st.idempotency,
		Flusher:     worker,
		Exporter:    exporter,
		Deps: roomsapp.Deps{
			Logger:   logger,
			Resolver: availability.NewResolver(cfg.MaxRangeNights),
			Nights:   metrics,
		},
	})

	if err := loadRoomFixtures(ctx, app, cfg.RoomFixtures, logger); err != nil {
		logger.Warn("room fixtures load failed", "error", err, "path", cfg.RoomFixtures)
	}

	server := ginserver.NewServer(
		cfg,
		obs.Middleware{Logger: logger, Metrics: metrics},
		obs.HealthHandlers{Checks: st.checks},
		ginserver.Handlers{Rooms: ginserver.RoomHandler{Commands: app.Commands, Queries: app.Queries, Logger: logger}},
	)
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(metrics), ReadHeaderTimeout: 5 * time.Second}

	g := &run.Group{}
	g.Add(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	})
	g.Add(func() error {
		logger.Info("metrics server starting", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		if err := metricsServer.Close(); err != nil {
			logger.Error("failed to stop metrics server", "error", err)
		}
	})
	workerCtx, cancelWorker := context.WithCancel(ctx)
	g.Add(func() error {
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}, func(error) { cancelWorker() })
	if consumer != nil {
		consumerCtx, cancel := context.WithCancel(ctx)
		topic := cfg.KafkaTopicPrefix + cfg.BookingTopic
		g.Add(func() error {
			logger.Info("booking consumer starting", "topic", topic, "group", cfg.KafkaGroup)
			if err := consumer.Run(consumerCtx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}, func(error) { cancel() })
	}
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) {
		logger.Info("shutting down", "signal", sig.Signal.String())
		return nil
	}
	return err
}

func metricsMux(metrics *obs.Metrics) *http.ServeMux {
	m := http.NewServeMux()
	m.Handle("/metrics", metrics.Handler())
	return m
}

// openExporter returns nil when object storage is not configured; export then fails with ErrExporterUnavailable.
func openExporter(cfg config.Config, logger *slog.Logger, st *storage) (policies.CalendarExporter, error) {
	if cfg.S3Endpoint == "" {
		return nil, nil
	}
	exporter, err := s3.NewCalendarExporter(s3.Options{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	st.checks["s3"] = exporter.Ping
	return exporter, nil
}
