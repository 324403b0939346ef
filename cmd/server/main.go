package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "stella/internal/adapters/email"
	web "stella/internal/adapters/http"
	"stella/internal/adapters/http/perf"
	linePkg "stella/internal/adapters/line"
	"stella/internal/adapters/storage"
	accountStore "stella/internal/adapters/storage/account"
	auditStorePkg "stella/internal/adapters/storage/audit"
	checkinStorePkg "stella/internal/adapters/storage/checkin"
	coinStorePkg "stella/internal/adapters/storage/coin"
	exchangeStorePkg "stella/internal/adapters/storage/exchange"
	fitestStorePkg "stella/internal/adapters/storage/fitest"
	noticeStorePkg "stella/internal/adapters/storage/notice"
	outboxStorePkg "stella/internal/adapters/storage/outbox"
	profileStorePkg "stella/internal/adapters/storage/profile"
	reservationStorePkg "stella/internal/adapters/storage/reservation"
	settingsStorePkg "stella/internal/adapters/storage/settings"
	shiftStorePkg "stella/internal/adapters/storage/shift"
	tierStorePkg "stella/internal/adapters/storage/tier"
	trainingrecStorePkg "stella/internal/adapters/storage/trainingrec"
	"stella/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env for local development; missing file is fine
	_ = godotenv.Load()

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("STELLA_DB_PATH", "stella.db")
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

	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:     acctStore,
		ProfileStore:     profileStorePkg.NewSQLiteStore(timedDB),
		LedgerStore:      coinStorePkg.NewSQLiteLedgerStore(timedDB),
		TransactionStore: coinStorePkg.NewSQLiteTransactionStore(timedDB),
		ReservationStore: reservationStorePkg.NewSQLiteStore(timedDB),
		CodeStore:        checkinStorePkg.NewSQLiteCodeStore(timedDB),
		LogStore:         checkinStorePkg.NewSQLiteLogStore(timedDB),
		ItemStore:        exchangeStorePkg.NewSQLiteItemStore(timedDB),
		RequestStore:     exchangeStorePkg.NewSQLiteRequestStore(timedDB),
		FitestStore:      fitestStorePkg.NewSQLiteStore(timedDB),
		TrainingStore:    trainingrecStorePkg.NewSQLiteStore(timedDB),
		NoticeStore:      noticeStorePkg.NewSQLiteStore(timedDB),
		SettingsStore:    settingsStorePkg.NewSQLiteStore(timedDB),
		ShiftStore:       shiftStorePkg.NewSQLiteStore(timedDB),
		TierStore:        tierStorePkg.NewSQLiteStore(timedDB),
		AuditStore:       auditStorePkg.NewSQLiteStore(timedDB),
		OutboxStore:      outboxStorePkg.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()

	// Seed the initial admin account and default configuration rows
	adminEmail := os.Getenv("STELLA_ADMIN_EMAIL")
	adminPassword := os.Getenv("STELLA_ADMIN_PASSWORD")
	if err := orchestrators.ExecuteSeedAdmin(ctx, adminEmail, adminPassword, orchestrators.SeedAdminDeps{
		AccountStore: acctStore,
	}); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if err := orchestrators.ExecuteSeedDefaults(ctx, orchestrators.SeedDefaultsDeps{
		SettingsStore: stores.SettingsStore,
		TierStore:     stores.TierStore,
	}); err != nil {
		log.Fatalf("failed to seed defaults: %v", err)
	}

	// Email sender: Resend when configured, noop otherwise
	var sender emailPkg.Sender
	emailFrom := envOrDefault("STELLA_RESEND_FROM", "Stella Gym <noreply@stella.example>")
	if key := os.Getenv("STELLA_RESEND_KEY"); key != "" {
		sender = emailPkg.NewResendSender(key, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("STELLA_ENV") == "production" {
			log.Println("WARNING: STELLA_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop)")
		}
	}

	// LINE pusher for outbox notifications plus webhook signature secret
	var pusher linePkg.Pusher
	if token := os.Getenv("STELLA_LINE_CHANNEL_TOKEN"); token != "" {
		pusher = linePkg.NewClient(token)
		log.Println("LINE pusher configured")
	} else {
		pusher = linePkg.NewNoopPusher()
		log.Println("LINE pusher configured (noop)")
	}
	web.SetLineChannelSecret(os.Getenv("STELLA_LINE_CHANNEL_SECRET"))

	// Outbox delivery worker
	stopOutbox := orchestrators.StartOutboxWorker(ctx, orchestrators.OutboxProcessDeps{
		OutboxStore: stores.OutboxStore,
		LinePusher:  pusher,
		EmailSender: sender,
		EmailFrom:   emailFrom,
		Now:         time.Now,
	}, orchestrators.DefaultOutboxWorkerConfig())
	defer stopOutbox()

	// Periodic sweeps: coin expiry, overdue reservation completion,
	// stale verification code cleanup
	go runSweeps(ctx, stores)

	mux := web.NewMux(envOrDefault("STELLA_STATIC_DIR", "static"), stores, collector)

	addr := envOrDefault("STELLA_ADDR", ":8080")
	log.Printf("stella %s starting on %s (env=%s)", version, addr, envOrDefault("STELLA_ENV", "development"))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// runSweeps runs the maintenance passes every ten minutes.
func runSweeps(ctx context.Context, stores *web.Stores) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := orchestrators.ExecuteExpireCoins(ctx, orchestrators.ExpireCoinsDeps{
				LedgerStore:      stores.LedgerStore,
				TransactionStore: stores.TransactionStore,
				GenerateID:       newID,
				Now:              time.Now,
			}); err != nil {
				slog.Error("sweep_event", "event", "expire_coins_failed", "error", err.Error())
			} else if n > 0 {
				slog.Info("sweep_event", "event", "coins_expired", "count", n)
			}

			if n, err := orchestrators.ExecuteCompleteOverdueReservations(ctx, orchestrators.CompleteOverdueDeps{
				ReservationStore: stores.ReservationStore,
				LedgerStore:      stores.LedgerStore,
				TransactionStore: stores.TransactionStore,
				Now:              time.Now,
			}); err != nil {
				slog.Error("sweep_event", "event", "complete_overdue_failed", "error", err.Error())
			} else if n > 0 {
				slog.Info("sweep_event", "event", "reservations_completed", "count", n)
			}

			if n, err := stores.CodeStore.DeleteExpired(ctx, time.Now()); err != nil {
				slog.Error("sweep_event", "event", "code_cleanup_failed", "error", err.Error())
			} else if n > 0 {
				slog.Info("sweep_event", "event", "codes_deleted", "count", n)
			}
		}
	}
}

func newID() string {
	return uuid.New().String()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
