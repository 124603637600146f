package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goflare.io/storefront"
	"goflare.io/storefront/account"
	"goflare.io/storefront/api"
	"goflare.io/storefront/cache"
	"goflare.io/storefront/cart"
	"goflare.io/storefront/catalog"
	"goflare.io/storefront/category"
	"goflare.io/storefront/config"
	"goflare.io/storefront/driver"
	"goflare.io/storefront/event"
	"goflare.io/storefront/httpapi"
	"goflare.io/storefront/i18n"
	"goflare.io/storefront/logger"
	"goflare.io/storefront/order"
)

const serviceName = "storefront"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(logger.Options{
		Service: serviceName,
		Env:     cfg.Server.Env,
		Level:   cfg.Log.Level,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *driver.DB
	if cfg.Database.URL != "" {
		if db, err = driver.ConnectSQL(ctx, cfg.Database.URL); err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer db.Pool.Close()
		if err = cart.EnsureSchema(ctx, db.Pool); err != nil {
			return fmt.Errorf("failed to prepare cart schema: %w", err)
		}
		log.Info("Postgres connection established")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		if rdb, err = driver.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		log.Info("Redis connection established", zap.String("addr", cfg.Redis.Addr))
	}

	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		if nc, err = driver.ConnectNATS(cfg.NATS.URL, serviceName, log); err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer nc.Close()
		log.Info("NATS connection established", zap.String("url", cfg.NATS.URL))
	}

	catalogCache, err := cache.New(cache.Config{
		MaxItems: int64(cfg.Cache.MaxItems),
		TTL:      cfg.Cache.CatalogTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to build catalog cache: %w", err)
	}
	defer catalogCache.Close()

	client, err := api.NewClient(api.Config{
		BaseURL:         cfg.Backend.BaseURL,
		Timeout:         cfg.Backend.Timeout,
		BreakerFailures: uint32(cfg.Backend.BreakerFailures),
		BreakerOpenFor:  cfg.Backend.BreakerOpenFor,
	}, log)
	if err != nil {
		return err
	}

	bundle, err := i18n.NewBundle(cfg.I18n.DefaultLocale)
	if err != nil {
		return err
	}

	em := storefront.NewEventManager(nc, log)
	carts := cart.NewManager(cartRepository(db, rdb, cfg, log), log,
		cart.WithNotifier(em),
		cart.WithLogoutPolicy(cfg.Cart.LogoutPolicy),
		cart.WithIdleTimeout(cfg.Cart.IdleTimeout),
	)

	events := event.NewMemoryRepository(event.DefaultTTL)
	if rdb != nil {
		events = event.NewRepository(rdb, event.DefaultTTL, log)
	}

	svc := storefront.NewService(
		carts,
		catalog.NewRepository(client, catalogCache, log),
		category.NewRepository(client, catalogCache, log),
		order.NewRepository(client, log),
		account.NewRepository(client, log),
		events,
		bundle,
		log,
	)

	wp := storefront.NewWorkerPool(cfg.NATS.Workers, svc, log)
	if err = em.SubscribeToEvents(wp); err != nil {
		return err
	}

	handler := httpapi.New(svc,
		httpapi.NewCookieStore([]byte(cfg.Session.Secret), cfg.Session.MaxAge, cfg.Session.Secure),
		bundle, log,
		httpapi.Options{
			SessionName:  cfg.Session.Name,
			BackendState: func() string { return client.BreakerState().String() },
		})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", server.Addr),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("instance", carts.Origin()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown requested")
	case err = <-serveErr:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("HTTP shutdown failed", zap.Error(shutdownErr))
	}
	if closeErr := em.Close(); closeErr != nil {
		log.Warn("Failed to drain cart event subscription", zap.Error(closeErr))
	}
	wp.Shutdown()
	if closeErr := carts.Close(shutdownCtx); closeErr != nil {
		log.Error("Failed to flush carts", zap.Error(closeErr))
	}

	log.Info("Storefront stopped")
	return err
}

// cartRepository picks where carts live: account carts in Postgres, guest
// carts in Redis, and process memory for whichever is not configured.
func cartRepository(db *driver.DB, rdb *redis.Client, cfg *config.Config, log *zap.Logger) cart.Repository {
	var guests, users cart.Repository
	memory := cart.NewMemoryRepository()

	guests = memory
	if rdb != nil {
		guests = cart.NewRedisRepository(rdb, cfg.Cart.GuestTTL, log)
	}

	users = guests
	if db != nil {
		users = cart.NewPostgresRepository(db.Pool, log)
	} else {
		log.Warn("DATABASE_URL not set; account carts are not durable")
	}

	return cart.NewRoutingRepository(guests, users)
}
