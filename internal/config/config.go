// package config provides the environment-backed configuration loader used
// by the service bootstrap (cmd/batchguard/main.go).
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the runtime config values used by main.go.
type Config struct {
	ListenAddr  string // LISTEN_ADDR (default :8080)
	LedgerPath  string // LEDGER_PATH (JSON snapshot; used when no DATABASE_URL)
	DatabaseURL string // DATABASE_URL (Postgres ledger source)

	KafkaBrokers []string // KAFKA_BROKERS (comma-separated)
	KafkaTopic   string   // KAFKA_TOPIC
	S3Bucket     string   // S3_BUCKET
	S3Prefix     string   // S3_PREFIX (optional)
	OutcomeDir   string   // OUTCOME_DIR (local outcome sink, dev)

	AuthJWTSecret string // AUTH_JWT_SECRET (operator endpoints; empty disables auth)

	EmitWorkers   int // EMIT_WORKERS (default 4)
	EmitQueueSize int // EMIT_QUEUE_SIZE (default 256)
}

// LoadFromEnv reads config values from environment variables.
func LoadFromEnv() *Config {
	cfg := &Config{
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		LedgerPath:    os.Getenv("LEDGER_PATH"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		KafkaTopic:    strings.TrimSpace(os.Getenv("KAFKA_TOPIC")),
		S3Bucket:      strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Prefix:      strings.TrimSpace(os.Getenv("S3_PREFIX")),
		OutcomeDir:    os.Getenv("OUTCOME_DIR"),
		AuthJWTSecret: os.Getenv("AUTH_JWT_SECRET"),
	}

	// sensible defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = "./ledger.json"
	}

	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	cfg.EmitWorkers = intFromEnv("EMIT_WORKERS", 4)
	cfg.EmitQueueSize = intFromEnv("EMIT_QUEUE_SIZE", 256)

	return cfg
}

func intFromEnv(name string, def int) int {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
