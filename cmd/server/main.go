package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"careermatrix/internal/api"
	"careermatrix/internal/audit"
	"careermatrix/internal/auth"
	"careermatrix/internal/config"
	"careermatrix/internal/db"
	"careermatrix/internal/models"
	"careermatrix/internal/notify"
	"careermatrix/internal/service"
	"careermatrix/internal/session"
	"careermatrix/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var st store.Store
	var sqdb *sql.DB
	if cfg.DemoMode() {
		log.Printf("demo mode: no DB_DSN configured, using seeded in-memory store")
		st = store.NewDemo()
	} else {
		sqdb, err = db.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer sqdb.Close()
		if err := db.ApplyMigrationFile(sqdb, "migrations/001_init.sql"); err != nil {
			log.Fatalf("migration: %v", err)
		}
		st = store.NewSQL(sqdb, cfg.DBDriver)
	}

	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
		if err := bootstrapAdmin(context.Background(), st, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
	}

	var durable session.Store
	switch {
	case cfg.SessionRedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.SessionRedisAddr})
		durable = session.NewRedisStore(client)
		log.Printf("session backend: redis addr=%s", cfg.SessionRedisAddr)
	case sqdb != nil:
		durable = session.NewSQLStore(sqdb, cfg.DBDriver)
		log.Printf("session backend: sql driver=%s", cfg.DBDriver)
	default:
		log.Printf("session backend: memory only")
	}
	sessions := session.NewManager(
		session.NewFallbackStore(durable, session.NewMemoryStore(), cfg.SessionDBTimeout()),
		cfg.SessionLifetime(),
		cfg.SessionSweepInterval(),
	)
	sessions.StartSweeper()

	svc := service.New(cfg, st, sessions, notify.NewSender(cfg))
	admin := service.NewAdmin(svc, audit.NewRecorder(st))
	r := api.NewRouter(cfg, svc, admin)

	hsrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTPReadHeaderTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		errCh <- hsrv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	case sig := <-stop:
		log.Printf("shutdown signal=%s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := hsrv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
		cancel()
	}
	sessions.Close()
}

// bootstrapAdmin creates the configured admin account on first start
// and is a no-op when the email is already registered.
func bootstrapAdmin(ctx context.Context, st store.Store, email, password string) error {
	_, err := st.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return st.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Administrator",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	})
}
