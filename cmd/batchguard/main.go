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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/batchguard/batchguard/internal/config"
	"github.com/batchguard/batchguard/internal/handlers"
	"github.com/batchguard/batchguard/internal/ledger"
	"github.com/batchguard/batchguard/internal/outcome"
	"github.com/batchguard/batchguard/internal/verify"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.LoadFromEnv()

	// Ledger snapshot: Postgres when configured, JSON file otherwise.
	var (
		index *ledger.Index
		err   error
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open postgres: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := db.PingContext(ctx); err != nil {
			cancel()
			log.Fatalf("failed to ping postgres: %v", err)
		}
		index, err = ledger.LoadPG(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("failed to load ledger from postgres: %v", err)
		}
		// snapshot taken; the engine never goes back to the DB
		_ = db.Close()
		log.Printf("ledger loaded from postgres (%d records, %d recalled)", index.Len(), index.Recalled())
	} else {
		index, err = ledger.LoadFile(cfg.LedgerPath)
		if err != nil {
			log.Fatalf("failed to load ledger file: %v", err)
		}
		log.Printf("ledger loaded from %s (%d records, %d recalled)", cfg.LedgerPath, index.Len(), index.Recalled())
	}

	verifier := verify.New(index)

	// --- Outcome sink wiring (all optional) ---
	var (
		sinks     []outcome.Sink
		kafkaSink *outcome.KafkaSink
	)
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic != "" {
		kafkaSink, err = outcome.NewKafkaSink(outcome.KafkaSinkConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("failed to initialize kafka sink: %v", err)
		}
		sinks = append(sinks, kafkaSink)
		log.Printf("kafka outcome sink initialized (brokers=%v topic=%s)", cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	if cfg.S3Bucket != "" {
		archiver, err := outcome.NewS3Archiver(context.Background(), cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Fatalf("failed to initialize s3 archiver: %v", err)
		}
		sinks = append(sinks, archiver)
		log.Printf("s3 outcome archiver initialized (bucket=%s prefix=%s)", cfg.S3Bucket, cfg.S3Prefix)
	}
	if cfg.OutcomeDir != "" {
		sinks = append(sinks, outcome.NewFileSink(cfg.OutcomeDir))
		log.Printf("file outcome sink initialized (dir=%s)", cfg.OutcomeDir)
	}
	if len(sinks) == 0 {
		log.Println("no outcome sinks configured; verification outcomes will not be recorded")
	}

	emitter := outcome.NewEmitter(sinks, outcome.EmitterConfig{
		Workers:   cfg.EmitWorkers,
		QueueSize: cfg.EmitQueueSize,
	})

	if cfg.AuthJWTSecret == "" {
		log.Println("AUTH_JWT_SECRET not set; operator endpoints are unauthenticated (dev only)")
	}

	r := chi.NewRouter()
	handlers.RegisterRoutes(&handlers.Deps{
		Config:   cfg,
		Index:    index,
		Verifier: verifier,
		Emitter:  emitter,
	}, r)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting batchguard server on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting requests, then drain the emitter.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}

	emitter.Close()
	if kafkaSink != nil {
		_ = kafkaSink.Close()
	}
	log.Println("server stopped")
}
