package util

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/vastaff/gatekeeper/internal/models"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultServerAddr      = "localhost:8080"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultSessionTTL      = 24 * time.Hour
	defaultActivityTimeout = 30 * time.Minute

	defaultCSRFTTL           = 24 * time.Hour
	defaultCSRFSweepInterval = time.Hour
	defaultRateSweepInterval = time.Hour

	// Requests from the same client spaced closer than this are treated
	// as an automated burst regardless of remaining quota.
	defaultBurstInterval = 100 * time.Millisecond

	defaultAuthWindow = time.Hour
	defaultAuthMax    = 5

	defaultAPIWindow = time.Minute
	defaultAPIMax    = 30

	defaultWindow = 15 * time.Minute
	defaultMax    = 100

	CSRFTokenLength = 32 // bytes of entropy, hex-encoded on the wire
	JWTLeeWay       = 5 * time.Second
)

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = defaultServerAddr
	}

	return &ServerConfig{
		ServerAddr:      addr,
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

type SessionConfig struct {
	SecretKey       []byte
	SessionTTL      time.Duration
	ActivityTimeout time.Duration
	// SecureCookies включается в production, иначе локальная разработка
	// по http не сможет отправлять куки обратно.
	SecureCookies bool
}

func NewSessionConfig() *SessionConfig {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}
	return &SessionConfig{
		SecretKey:       []byte(secret),
		SessionTTL:      parseDurationOrDefault("SESSION_TTL", defaultSessionTTL),
		ActivityTimeout: parseDurationOrDefault("ACTIVITY_TIMEOUT", defaultActivityTimeout),
		SecureCookies:   os.Getenv("APP_ENV") == "production",
	}
}

type CSRFConfig struct {
	TokenTTL      time.Duration
	SweepInterval time.Duration
}

func NewCSRFConfig() *CSRFConfig {
	return &CSRFConfig{
		TokenTTL:      parseDurationOrDefault("CSRF_TTL", defaultCSRFTTL),
		SweepInterval: parseDurationOrDefault("CSRF_SWEEP_INTERVAL", defaultCSRFSweepInterval),
	}
}

type RateLimiterConfig struct {
	Auth    models.RatePolicy
	API     models.RatePolicy
	Default models.RatePolicy

	BurstInterval time.Duration
	SweepInterval time.Duration
}

func NewRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		Auth: models.RatePolicy{
			Name:   "auth",
			Window: parseDurationOrDefault("RATE_AUTH_WINDOW", defaultAuthWindow),
			Max:    parseIntOrDefault("RATE_AUTH_MAX", defaultAuthMax),
		},
		API: models.RatePolicy{
			Name:   "api",
			Window: parseDurationOrDefault("RATE_API_WINDOW", defaultAPIWindow),
			Max:    parseIntOrDefault("RATE_API_MAX", defaultAPIMax),
		},
		Default: models.RatePolicy{
			Name:   "default",
			Window: parseDurationOrDefault("RATE_DEFAULT_WINDOW", defaultWindow),
			Max:    parseIntOrDefault("RATE_DEFAULT_MAX", defaultMax),
		},
		BurstInterval: parseDurationOrDefault("RATE_BURST_INTERVAL", defaultBurstInterval),
		SweepInterval: parseDurationOrDefault("RATE_SWEEP_INTERVAL", defaultRateSweepInterval),
	}
}

// StoreBackend выбирает где живут таблицы gatekeeper'а:
// "redis" - общее состояние между инстансами, "memory" - один процесс.
func StoreBackend() string {
	backend := os.Getenv("GATEKEEPER_STORE")
	if backend == "" {
		backend = "redis"
	}
	return backend
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}

func parseIntOrDefault(varName string, def int) int {
	if v := os.Getenv(varName); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid integer in %s: %s, using default %d", varName, v, def)
	}
	return def
}
