package main

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"shopfront/internal/cart"
	"shopfront/internal/catalog"
	"shopfront/internal/storefront"
	"shopfront/pkg/kit"
)

func main() {
	_ = godotenv.Load()

	service := "shopfront"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")
	catalogURL := getenv("CATALOG_URL", "https://dummyjson.com")

	store := newCartStore(log)

	s := storefront.NewServer(store, catalog.NewClient(catalogURL), log)

	reg := prometheus.NewRegistry()
	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:      log,
		Service:  service,
		Registry: reg,

		MetricsEnabled: os.Getenv("METRICS_TOKEN") != "",
		MetricsToken:   os.Getenv("METRICS_TOKEN"),

		RateLimit:         getenvInt("RATE_LIMIT", 0),
		RateWindowSeconds: getenvInt("RATE_WINDOW_SECONDS", 60),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// newCartStore opens the Postgres snapshot store when DB_DSN is set and
// falls back to the in-memory store otherwise (dev mode: carts do not
// survive a restart).
func newCartStore(log *zap.Logger) cart.Store {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Info("DB_DSN not set, using in-memory cart store")
		return cart.NewStore()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal("open db failed", zap.Error(err))
	}

	store := cart.NewPostgresStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		log.Fatal("db ping failed", zap.Error(err))
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure schema failed", zap.Error(err))
	}

	return store
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
