package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/commentsy/internal/auth"
	"github.com/pribylovaa/commentsy/internal/cache"
	"github.com/pribylovaa/commentsy/internal/config"
	chttp "github.com/pribylovaa/commentsy/internal/http"
	"github.com/pribylovaa/commentsy/internal/pkg/log"
	"github.com/pribylovaa/commentsy/internal/pkg/redact"
	"github.com/pribylovaa/commentsy/internal/service"
	"github.com/pribylovaa/commentsy/internal/storage"
	"github.com/pribylovaa/commentsy/internal/storage/memory"
	"github.com/pribylovaa/commentsy/internal/storage/mongo"
	"github.com/pribylovaa/commentsy/internal/storage/postgres"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	lg := log.New(cfg.Env, os.Stdout)
	slog.SetDefault(lg)
	lg.Info("starting commentsy", "env", cfg.Env, "db_driver", cfg.DB.Driver)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := openStorage(dbCtx, cfg, lg)
	dbCancel()
	if err != nil {
		lg.Error("storage_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := store.Close(context.Background()); cerr != nil {
			lg.Warn("storage_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	svc := service.New(store, *cfg)
	lg.Info("service_initialized")

	apiHandler := chttp.NewRouter(svc, chttp.Options{
		Logger:         lg,
		Timeout:        cfg.Timeouts.Service,
		Verifier:       auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Registerer:     prometheus.DefaultRegisterer,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		lg.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	lg.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	lg.Info("commentsy_ready")

	select {
	case <-rootCtx.Done():
		lg.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			lg.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		lg.Info("http_stopped")
	}

	lg.Info("service_stopped")
}

// openStorage выбирает бэкенд по db.driver и, если задан redis.url,
// оборачивает его кэшем тенантов.
func openStorage(ctx context.Context, cfg *config.Config, lg *slog.Logger) (storage.Storage, error) {
	var (
		store storage.Storage
		err   error
	)

	switch cfg.DB.Driver {
	case config.DriverMongo:
		store, err = mongo.New(ctx, cfg)
	case config.DriverPostgres:
		store, err = postgres.New(ctx, cfg.DB.URL)
	case config.DriverMemory:
		store = memory.New()
	default:
		err = fmt.Errorf("unknown db driver %q", cfg.DB.Driver)
	}
	if err != nil {
		return nil, err
	}

	lg.Info("storage_connected", "driver", cfg.DB.Driver, "url", redact.URL(cfg.DB.URL))

	if cfg.Redis.URL == "" {
		return store, nil
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}

	lg.Info("redis_connected", "url", redact.URL(cfg.Redis.URL), "ttl", cfg.Redis.TTL)
	return cache.NewApps(store, rdb, cfg.Redis.Prefix, cfg.Redis.TTL), nil
}
