package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"subcore.org/internal/account"
	"subcore.org/internal/auth"
	"subcore.org/internal/catalog"
	"subcore.org/internal/config"
	"subcore.org/internal/entitlement"
	"subcore.org/internal/httpapi"
	"subcore.org/internal/obs"
	"subcore.org/internal/payment"
	"subcore.org/internal/rbac"
	"subcore.org/internal/session"
	"subcore.org/internal/subscription"
)

// Overridden at build time via -ldflags.
var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.PGDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)
	db.SetConnMaxLifetime(cfg.PGConnLifetime)
	db.SetConnMaxIdleTime(cfg.PGConnIdleTime)

	accounts, err := account.NewService(account.NewPGStore(db))
	if err != nil {
		log.Fatalf("account service: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalog.NewPGStore(db))
	if err != nil {
		log.Fatalf("catalog service: %v", err)
	}
	subs, err := subscription.NewService(subscription.NewPGStore(db), catalogSvc, accounts)
	if err != nil {
		log.Fatalf("subscription service: %v", err)
	}
	payments, err := payment.NewService(payment.NewPGStore(db), subs)
	if err != nil {
		log.Fatalf("payment service: %v", err)
	}
	rbacSvc, err := rbac.NewService(rbac.NewPGStore(db))
	if err != nil {
		log.Fatalf("rbac service: %v", err)
	}

	codec, err := auth.NewCodec(cfg.AccessSecret, cfg.RefreshSecret,
		auth.WithAccessTTL(cfg.AccessTTL),
		auth.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	authSvc, err := auth.NewService(codec, accounts, entitlement.NewAssembler(db), session.NewPGRegistry(db))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, httpapi.Services{
		Auth:          authSvc,
		Accounts:      accounts,
		Catalog:       catalogSvc,
		Subscriptions: subs,
		Payments:      payments,
		RBAC:          rbacSvc,
	})

	// RequestID wraps last so every other middleware, Logging included, sees
	// the assigned id in the request context.
	handler := httpapi.Logging(api.Handler())
	handler = httpapi.SecurityHeaders(handler)
	handler = httpapi.CORS(handler)
	handler = httpapi.MaxBodyBytes(handler, cfg.MaxBodyBytes)
	handler = httpapi.RateLimit(handler, cfg.RateLimitBurst, cfg.RateLimitPerSecond)
	handler = httpapi.RequestID(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting subcore-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	log.Println("Stopped")
}
