package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyxaxa/oral-screening/config"
	"github.com/andreyxaxa/oral-screening/internal/controller/restapi"
	"github.com/andreyxaxa/oral-screening/internal/controller/worker/outbox"
	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/internal/infrastructure"
	"github.com/andreyxaxa/oral-screening/internal/infrastructure/eventlog"
	infrakafka "github.com/andreyxaxa/oral-screening/internal/infrastructure/kafka"
	"github.com/andreyxaxa/oral-screening/internal/infrastructure/pdf"
	"github.com/andreyxaxa/oral-screening/internal/infrastructure/processor"
	"github.com/andreyxaxa/oral-screening/internal/repo/persistent"
	"github.com/andreyxaxa/oral-screening/internal/usecase/imageprocessor"
	outboxuc "github.com/andreyxaxa/oral-screening/internal/usecase/outbox"
	"github.com/andreyxaxa/oral-screening/internal/usecase/submission"
	"github.com/andreyxaxa/oral-screening/pkg/httpserver"
	"github.com/andreyxaxa/oral-screening/pkg/kafka/producer"
	"github.com/andreyxaxa/oral-screening/pkg/logger"
	"github.com/andreyxaxa/oral-screening/pkg/metrics"
	"github.com/andreyxaxa/oral-screening/pkg/postgres"
	"github.com/andreyxaxa/oral-screening/pkg/s3client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	screeningMetrics, err := metrics.NewScreeningMetrics(registry)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - metrics.NewScreeningMetrics: %w", err))
	}

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey,
		s3client.Region(cfg.S3.Region),
		s3client.UsePathStyle(cfg.S3.UsePathStyle),
		s3client.Bucket(cfg.S3.Bucket, cfg.S3.CreateBucket),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	err = persistent.EnsureSchema(ctx, pg)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - persistent.EnsureSchema: %w", err))
	}

	outboxRepo := persistent.NewOutboxRepo(pg)

	// Use-Case

	imageProcessor := processor.New(processor.JPEGQuality(cfg.Report.JPEGQuality))

	submissionUseCase := submission.New(
		persistent.NewArtifactRepo(s3c, cfg.S3.Bucket),
		persistent.NewSubmissionRepo(pg),
		outboxRepo,
		pg,
		imageprocessor.New(imageProcessor),
		imageProcessor,
		pdf.New(pdf.Creator(cfg.App.Name)),
		l,
		submission.ReannotatePolicy(entity.ReannotatePolicy(cfg.Submission.ReannotatePolicy)),
		submission.ReportPrefix(cfg.Report.Prefix),
		submission.PresignTTL(cfg.S3.PresignTTL),
		submission.Metrics(screeningMetrics),
	)

	outboxUseCase := outboxuc.New(outboxRepo, pg, l)

	// Events sender
	var sender infrastructure.EventsSender
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers,
			producer.Topic(cfg.Kafka.Topic),
			producer.BatchTimeout(cfg.Kafka.BatchTimeout),
			producer.WriteTimeout(cfg.Kafka.WriteTimeout),
		)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
		}
		sender = infrakafka.NewEventProducer(kafkaProducer)
	} else {
		l.Warn("app - Run - KAFKA_BROKERS is empty, outbox events go to the log")
		sender = eventlog.New(l)
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		outboxUseCase,
		sender,
		l,
		cfg.OutboxRelay.PollInterval,
		cfg.OutboxRelay.CleanupInterval,
		cfg.OutboxRelay.MarkFailedInterval,
		cfg.OutboxRelay.ProcessBatchTimeout,
		cfg.OutboxRelay.BatchSize,
		cfg.OutboxRelay.MaxRetries,
		outbox.WithBatchObserver(screeningMetrics),
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.ReadTimeout(cfg.HTTP.ReadTimeout),
		httpserver.WriteTimeout(cfg.HTTP.WriteTimeout),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
		httpserver.ErrorHandler(restapi.ErrorHandler),
	)
	restapi.NewRouter(httpServer.App, cfg, submissionUseCase, registry, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}
}
