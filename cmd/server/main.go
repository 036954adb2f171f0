package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcapi "github.com/wanghonghua666/AI-CALENDAR/internal/api/grpc"
	"github.com/wanghonghua666/AI-CALENDAR/internal/app"
	"github.com/wanghonghua666/AI-CALENDAR/internal/config"
	"github.com/wanghonghua666/AI-CALENDAR/internal/events"
	httpapi "github.com/wanghonghua666/AI-CALENDAR/internal/http"
	"github.com/wanghonghua666/AI-CALENDAR/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Service exited with error")
	}
}

func run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		return err
	}

	server := grpc.NewServer(
		grpc.UnaryInterceptor(observability.UnaryServerInterceptor(application.Metrics)),
	)

	// Register gRPC health check service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcapi.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	grpcapi.Register(server, application)

	// Enable gRPC reflection for debugging tools like grpcurl
	reflection.Register(server)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           httpapi.NewRouter(application),
		ReadHeaderTimeout: 5 * time.Second,
	}
	obsServer := observability.NewServer(":" + cfg.Observability.MetricsPort)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", lis.Addr().String()).Msg("gRPC server started")
		return server.Serve(lis)
	})
	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(obsServer.ListenAndServe)
	g.Go(func() error { return application.Feed.Run(gctx) })
	g.Go(func() error { return application.Proposals.Run(gctx, time.Minute) })

	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		consumer := events.NewConsumer(events.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topic:   cfg.Kafka.TopicFinal,
			Metrics: application.Metrics,
		}, application.Transcripts.HandleFinal)
		defer consumer.Close()
		g.Go(func() error { return consumer.Run(gctx) })
	}

	if err := application.Start(); err != nil {
		return err
	}
	obsServer.SetReady(true)

	// Shut everything down once a signal arrives or any server fails
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down servers")

		obsServer.SetReady(false)
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		server.GracefulStop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP shutdown error")
		}
		if err := obsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Observability shutdown error")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	log.Info().Msg("Shutdown complete")
	return nil
}

