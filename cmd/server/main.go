package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"healthcare-booking-api/internal/config"
	"healthcare-booking-api/internal/handler"
	"healthcare-booking-api/internal/logger"
	"healthcare-booking-api/internal/middleware"
	"healthcare-booking-api/internal/notify"
	"healthcare-booking-api/internal/storage"
	"healthcare-booking-api/internal/store"
)

const serviceName = "healthcare-booking-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("config")
	}
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	// storage
	backend, err := storage.Open(ctx, cfg.Storage, "db/migrations/001_init.sql")
	if err != nil {
		log.WithError(err).Fatal("storage")
	}
	defer backend.Close()
	log.WithField("backend", cfg.Storage.Backend).Info("storage ready")

	events, err := notify.Open(ctx, cfg.Events)
	if err != nil {
		log.WithError(err).Fatal("events")
	}
	defer events.Close()

	doctors := store.NewDoctorCatalog(backend.Collection(storage.Doctors), log)
	appointments := store.NewAppointmentStore(backend.Collection(storage.Appointments), log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Close()

	h := handler.New(doctors, appointments, events, log)
	router := h.Router(handler.Options{
		Limiter:    rl,
		Metrics:    middleware.NewMetrics(reg),
		Gatherer:   reg,
		CORSOrigin: cfg.CORSOrigin,
	})

	// grpc health for orchestrators
	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.WithError(err).Fatal("listen")
	}
	go func() {
		log.Infof("grpc health on :%s", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			log.WithError(err).Error("grpc")
		}
	}()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("http on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http")
		}
	}()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Info("shutting down")
	hs.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	srv.GracefulStop()
}
