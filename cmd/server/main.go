package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "yourtrainer/internal/adapters/email"
	web "yourtrainer/internal/adapters/http"
	"yourtrainer/internal/adapters/http/perf"
	"yourtrainer/internal/adapters/storage"
	accountStore "yourtrainer/internal/adapters/storage/account"
	clientStore "yourtrainer/internal/adapters/storage/client"
	lessonStore "yourtrainer/internal/adapters/storage/lesson"
	"yourtrainer/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Optional .env file for local development; env vars win over file values
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// WAL mode, foreign keys and a busy timeout keep concurrent readers happy
	dbPath := envOrDefault("YOURTRAINER_DB", "yourtrainer.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore: acctStore,
		ClientStore:  clientStore.NewSQLiteStore(timedDB),
		LessonStore:  lessonStore.NewSQLiteStore(timedDB),
	}

	// Seed the initial trainer account (idempotent)
	seedEmail := os.Getenv("YOURTRAINER_SEED_EMAIL")
	seedPassword := os.Getenv("YOURTRAINER_SEED_PASSWORD")
	if seedEmail != "" {
		if _, err := orchestrators.ExecuteSeedTrainer(context.Background(), orchestrators.SeedTrainerInput{
			Email:    seedEmail,
			Password: seedPassword,
		}, orchestrators.SeedTrainerDeps{
			AccountStore: acctStore,
			GenerateID:   func() string { return uuid.New().String() },
			Now:          time.Now,
		}); err != nil {
			log.Fatalf("failed to seed trainer: %v", err)
		}
	}

	// Configure email sender for lesson reminders
	resendKey := os.Getenv("YOURTRAINER_RESEND_KEY")
	emailFrom := envOrDefault("YOURTRAINER_EMAIL_FROM", "YourTrainer <noreply@yourtrainer.example>")
	emailReply := envOrDefault("YOURTRAINER_REPLY_TO", "")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("YOURTRAINER_ENV") == "production" {
			log.Println("WARNING: YOURTRAINER_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set YOURTRAINER_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux(stores, collector)

	addr := envOrDefault("YOURTRAINER_ADDR", ":8080")
	log.Printf("YourTrainer %s starting on %s (env=%s)", version, addr, envOrDefault("YOURTRAINER_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
