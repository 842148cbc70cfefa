// Command server wires high-level dependencies and runs the HTTP API.
// Business logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"lifelink/internal/advisory"
	"lifelink/internal/donor"
	"lifelink/internal/events"
	"lifelink/internal/interest"
	"lifelink/internal/jwtauth"
	"lifelink/internal/match"
	"lifelink/internal/platform/config"
	"lifelink/internal/platform/database"
	"lifelink/internal/platform/httpserver"
	"lifelink/internal/platform/logger"
	"lifelink/internal/platform/metrics"
	platformredis "lifelink/internal/platform/redis"
	"lifelink/internal/policy"
	"lifelink/internal/profile"
	"lifelink/internal/request"
	"lifelink/internal/stats"
	httptransport "lifelink/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()

	var (
		donorStore    donor.Store
		requestStore  request.Store
		interestStore interest.Store
		profileStore  profile.Store
	)
	if cfg.Postgres.DSN != "" {
		db, err := database.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db, cfg.Postgres.MigrationsURL); err != nil {
			return err
		}
		donorStore = donor.NewPostgres(db)
		requestStore = request.NewPostgres(db)
		interestStore = interest.NewPostgres(db)
		profileStore = profile.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		donorStore = donor.NewInMemoryStore()
		requestStore = request.NewInMemoryStore()
		interestStore = interest.NewInMemoryStore()
		profileStore = profile.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	var markers advisory.Markers = advisory.NewMemoryMarkers()
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		markers = advisory.NewRedisMarkers(redisClient.Client)
		log.Info("using redis advisory markers")
	}

	var sink events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaPublisher.Close()
		sink = kafkaPublisher
		log.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	}
	worker := events.NewWorker(sink, 256, log)
	publisher := worker.Publisher()

	eval := policy.NewEvaluator(policy.NewInMemoryDirectory())

	profileSvc := profile.NewService(profileStore, eval, profile.WithLogger(log))
	donorSvc := donor.NewService(donorStore, eval,
		donor.WithProfiles(profileSvc),
		donor.WithEvents(publisher),
		donor.WithMetrics(donor.NewMetrics(reg)),
		donor.WithLogger(log),
	)
	interestSvc := interest.NewService(interestStore, donorStore, requestStore, eval,
		interest.WithEvents(publisher),
		interest.WithLogger(log),
	)
	requestSvc := request.NewService(requestStore, eval,
		request.WithInterests(interestSvc),
		request.WithEvents(publisher),
		request.WithMetrics(request.NewMetrics(reg)),
		request.WithLogger(log),
	)
	matchSvc := match.NewService(requestStore, donorStore, interestSvc, eval,
		match.WithEvents(publisher),
		match.WithMetrics(match.NewMetrics(reg)),
		match.WithLogger(log),
	)
	statsSvc := stats.NewService(donorStore, requestStore, eval)
	advisorySvc := advisory.NewService(markers, advisory.WithLogger(log))

	jwtSvc := jwtauth.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Validator: jwtSvc,
		Metrics:   metrics.Handler(reg),
		Auth:      httptransport.NewAuthHandler(jwtSvc, log),
		Profile:   httptransport.NewProfileHandler(profileSvc),
		Donor:     httptransport.NewDonorHandler(donorSvc, matchSvc),
		Request:   httptransport.NewRequestHandler(requestSvc, interestSvc, matchSvc, advisorySvc),
		Admin:     httptransport.NewAdminHandler(statsSvc, donorSvc, requestSvc, eval),
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting lifelink", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
