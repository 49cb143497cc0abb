package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/cart"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/config"
	"github.com/ariefcatur/go-marketplace/internal/httpx"
	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/ariefcatur/go-marketplace/internal/reports"
	"github.com/ariefcatur/go-marketplace/internal/reviews"
	"github.com/ariefcatur/go-marketplace/internal/wishlist"
	"github.com/joho/godotenv"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})).
		With("service", cfg.ServiceName)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	db := &postgres.DB{Pool: pool}
	if err := db.Migrate(ctx); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
	prod.Start(ctx)

	// Repos & services
	users := &postgres.UserRepo{DB: db}
	catalogRepo := &postgres.CatalogRepo{DB: db}
	cartRepo := &postgres.CartRepo{DB: db}

	authSvc := auth.NewService(users, &redisx.Sessions{RDB: rdb}, cfg.SessionTTL)
	catalogSvc := catalog.NewService(catalogRepo, db, authSvc)
	ordersSvc := orders.NewService(&postgres.OrderRepo{DB: db}, db, catalogRepo,
		orders.WithCache(&redisx.OrderCache{RDB: rdb, TTL: cfg.OrderCacheTTL}),
		orders.WithIdempotency(&redisx.Idempotency{RDB: rdb, TTL: cfg.IdempotencyTTL}),
		orders.WithPublisher(prod, cfg.ServiceName),
		orders.WithLogger(log),
	)

	if created, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Error("seed admin", "err", err)
		os.Exit(1)
	} else if created {
		log.Info("admin account created", "email", cfg.AdminEmail)
	}

	router := httpx.NewRouter(log)
	api := &httpx.API{
		Auth:     authSvc,
		Catalog:  catalogSvc,
		Orders:   ordersSvc,
		Cart:     cart.NewService(cartRepo, catalogRepo, db),
		Wishlist: wishlist.NewService(cartRepo, catalogRepo),
		Reviews:  reviews.NewService(&postgres.ReviewRepo{DB: db}, catalogRepo, db),
		Reports:  reports.NewService(&postgres.ReportRepo{DB: db}, catalogRepo),
		Log:      log,
	}
	api.Register(router)

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // flush what is buffered, then close the writer
	cancel()
	prod.WaitClosed()
}
