package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"stella/internal/adapters/http/middleware"
	"stella/internal/adapters/http/perf"
	accountStore "stella/internal/adapters/storage/account"
	auditStore "stella/internal/adapters/storage/audit"
	checkinStore "stella/internal/adapters/storage/checkin"
	coinStore "stella/internal/adapters/storage/coin"
	exchangeStore "stella/internal/adapters/storage/exchange"
	fitestStore "stella/internal/adapters/storage/fitest"
	noticeStore "stella/internal/adapters/storage/notice"
	outboxStore "stella/internal/adapters/storage/outbox"
	profileStore "stella/internal/adapters/storage/profile"
	reservationStore "stella/internal/adapters/storage/reservation"
	settingsStore "stella/internal/adapters/storage/settings"
	shiftStore "stella/internal/adapters/storage/shift"
	tierStore "stella/internal/adapters/storage/tier"
	trainingrecStore "stella/internal/adapters/storage/trainingrec"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	ProfileStore     profileStore.Store
	LedgerStore      coinStore.LedgerStore
	TransactionStore coinStore.TransactionStore
	ReservationStore reservationStore.Store
	CodeStore        checkinStore.CodeStore
	LogStore         checkinStore.LogStore
	ItemStore        exchangeStore.ItemStore
	RequestStore     exchangeStore.RequestStore
	FitestStore      fitestStore.Store
	TrainingStore    trainingrecStore.Store
	NoticeStore      noticeStore.Store
	SettingsStore    settingsStore.Store
	ShiftStore       shiftStore.Store
	TierStore        tierStore.Store
	AuditStore       auditStore.Store
	OutboxStore      outboxStore.Store
}

// loadCSRFKey reads the CSRF secret from STELLA_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("STELLA_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("STELLA_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("STELLA_ENV") == "production" {
		log.Fatal("STELLA_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set STELLA_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// lineChannelSecret verifies incoming LINE webhook signatures (set by SetLineChannelSecret).
var lineChannelSecret string

// SetLineChannelSecret configures webhook signature verification.
func SetLineChannelSecret(secret string) {
	lineChannelSecret = secret
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("STELLA_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
