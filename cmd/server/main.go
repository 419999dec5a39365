// File: cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alanaman/KvServerLoadTest/internal/cache"
	"github.com/alanaman/KvServerLoadTest/internal/config"
	"github.com/alanaman/KvServerLoadTest/internal/handler"
	"github.com/alanaman/KvServerLoadTest/internal/httpserver"
	"github.com/alanaman/KvServerLoadTest/internal/pool"
	"github.com/alanaman/KvServerLoadTest/internal/store"
)

const (
	Version     = "1.0.0"
	ServiceName = "KV Cache Server"
)

// Config holds everything main needs to wire the service together.
// Positional CLI arguments take precedence over the matching
// environment variable, which in turn takes precedence over the
// built-in default.
type Config struct {
	Port        string
	DBHost      string
	Threads     int
	CacheShards int
	CacheSize   int
	PoolSize    int
	ShutdownFor time.Duration
	Banner      bool
}

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("[SERVER] configuration error: %v", err)
	}

	if cfg.Banner {
		printBanner(cfg)
	}

	db, err := store.OpenDB(cfg.DBHost)
	if err != nil {
		log.Fatalf("[SERVER] failed to open store: %v", err)
	}
	defer db.Close()

	byteCache, err := cache.NewByteCache(cfg.CacheSize, cfg.CacheShards)
	if err != nil {
		log.Fatalf("[SERVER] failed to build cache: %v", err)
	}

	factory := store.NewConnFactory(db)
	connPool := pool.New[handler.KVStore](cfg.PoolSize, func() (handler.KVStore, error) {
		return factory()
	})

	h := handler.New(byteCache, connPool)
	router := handler.NewRouter(h)

	srv := httpserver.New("0.0.0.0:"+cfg.Port, router, cfg.Threads)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("[SERVER] HTTP server stopped: %v", err)
		}
	}()

	log.Printf("[SERVER] listening on 0.0.0.0:%s with %d workers", cfg.Port, cfg.Threads)

	gracefulShutdown(cfg, srv)
}

// loadConfig parses `<program> <port> <db_host> <threads>`, with the
// older two-argument form `<program> <threads>` (binding to the
// default port and database)
// still accepted for backward compatibility.
func loadConfig(args []string) (*Config, error) {
	cfg := &Config{
		Port:        config.Getenv("PORT", "8080"),
		DBHost:      config.Getenv("DB_PATH", "kv.db"),
		Threads:     config.GetenvInt("THREADS", runtime.NumCPU()),
		CacheShards: config.GetenvInt("CACHE_SHARDS", 16),
		CacheSize:   config.GetenvInt("CACHE_SIZE", 10_000),
		PoolSize:    config.GetenvInt("POOL_SIZE", 8),
		ShutdownFor: config.GetenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Banner:      config.GetenvBool("BANNER", true),
	}

	switch len(args) {
	case 0:
		// all defaults / environment
	case 1:
		threads, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid thread count %q: %w", args[0], err)
		}
		cfg.Threads = threads
	case 3:
		cfg.Port = args[0]
		cfg.DBHost = args[1]
		threads, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("invalid thread count %q: %w", args[2], err)
		}
		cfg.Threads = threads
	default:
		return nil, fmt.Errorf("usage: %s <port> <db_host> <threads>  (or: %s <threads>)", os.Args[0], os.Args[0])
	}

	if cfg.Threads < 1 {
		return nil, fmt.Errorf("threads must be >= 1, got %d", cfg.Threads)
	}
	return cfg, nil
}

func printBanner(cfg *Config) {
	fmt.Printf(`
========================================
   %s v%s
========================================
  Sharded LRU Cache + SQLite Backend
========================================

Config:
  Port:          %s
  DB:            %s
  Workers:       %d
  Cache Shards:  %d
  Cache Size:    %d entries
  Pool Size:     %d

Endpoints:
  GET/PUT/DELETE  http://localhost:%s/<key>
  Status          http://localhost:%s/
  Metrics         http://localhost:%s/metrics
========================================

`, ServiceName, Version, cfg.Port, cfg.DBHost, cfg.Threads, cfg.CacheShards,
		cfg.CacheSize, cfg.PoolSize, cfg.Port, cfg.Port, cfg.Port)
}

func gracefulShutdown(cfg *Config, srv *httpserver.Server) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigCh
	log.Printf("[SERVER] signal received: %v, starting graceful shutdown", sig)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownFor)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[SERVER] shutdown error: %v", err)
	} else {
		log.Println("[SERVER] shutdown complete")
	}
}
