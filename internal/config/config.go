package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	LandingURL     string        // where /r/{id} sends unknown ids
	APITimeout     time.Duration // per-request deadline for /api routes
	CORSOrigins    []string      // origins allowed to call /api cross-domain
	ResolveTimeout time.Duration // default single-hop timeout without a profile file

	// Header profile
	ProfileFile           string        // optional YAML header profile, empty = built-in profile
	ProfileReloadInterval time.Duration // interval to re-read the profile file (default: 1h)
	ParseHTMLRefresh      bool          // enable the meta refresh / canonical fallback without a profile file

	// Store
	Store         string        // "redis" | "sqlite" | "memory"
	SQLiteDSN     string        // file path, file: URI, or libsql:// URL (required for sqlite)
	KeyPrefix     string        // redis key prefix (default: "linkfold:")
	RecordTTL     time.Duration // optional redis record expiry, 0 = keep forever
	PruneInterval time.Duration // interval to sweep expired ids from the redis index

	// Batch
	BatchDelay          time.Duration // pause between two resolutions
	BatchLargeDelay     time.Duration // pause once a table exceeds BatchLargeThreshold rows
	BatchLargeThreshold int
	BatchMaxRows        int   // 0 = no limit
	BatchMaxUpload      int64 // bytes
	BatchTimeout        time.Duration
	BatchStoreRecords   bool // true => every resolved cell is also stored as a link record

	// Redis
	RedisURL              string        // optional redis:// URL, overrides the fields below
	RedisAddr             string        // ex: "localhost:6379" (required for redis without URL)
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict admin endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict admin endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables win.
// Missing or inconsistent required settings panic.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: failed to read .env: %v", err))
	}

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKFOLD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKFOLD_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKFOLD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKFOLD_PRETTY_LOG", false),

		LandingURL:     getenv("LINKFOLD_LANDING_URL", "/"),
		APITimeout:     mustDuration("LINKFOLD_API_TIMEOUT", 30*time.Second),
		CORSOrigins:    splitAndTrim(getenv("LINKFOLD_CORS_ORIGINS", "")),
		ResolveTimeout: mustDuration("LINKFOLD_RESOLVE_TIMEOUT", 10*time.Second),

		// Header profile
		ProfileFile:           getenv("LINKFOLD_PROFILE_FILE", ""),
		ProfileReloadInterval: mustDuration("LINKFOLD_PROFILE_RELOAD_INTERVAL", time.Hour),
		ParseHTMLRefresh:      mustBool("LINKFOLD_PARSE_HTML_REFRESH", false),

		// Store
		Store:         strings.ToLower(getenv("LINKFOLD_STORE", StoreRedis)),
		KeyPrefix:     getenv("LINKFOLD_REDIS_KEY_PREFIX", "linkfold:"),
		RecordTTL:     mustDuration("LINKFOLD_RECORD_TTL", 0),
		PruneInterval: mustDuration("LINKFOLD_PRUNE_INTERVAL", time.Hour),

		// Batch
		BatchDelay:          mustDuration("LINKFOLD_BATCH_DELAY", 300*time.Millisecond),
		BatchLargeDelay:     mustDuration("LINKFOLD_BATCH_LARGE_DELAY", 600*time.Millisecond),
		BatchLargeThreshold: getenvInt("LINKFOLD_BATCH_LARGE_THRESHOLD", 100),
		BatchMaxRows:        getenvInt("LINKFOLD_BATCH_MAX_ROWS", 1000),
		BatchMaxUpload:      int64(getenvInt("LINKFOLD_BATCH_MAX_UPLOAD_MB", 10)) << 20,
		BatchTimeout:        mustDuration("LINKFOLD_BATCH_TIMEOUT", 15*time.Minute),
		BatchStoreRecords:   mustBool("LINKFOLD_BATCH_STORE_RECORDS", true),

		// Redis settings
		RedisURL:              getenv("LINKFOLD_REDIS_URL", ""),
		RedisUser:             getenv("LINKFOLD_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LINKFOLD_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("LINKFOLD_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("LINKFOLD_REDIS_DB", 0),
		RedisDT:               mustDuration("LINKFOLD_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("LINKFOLD_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("LINKFOLD_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("LINKFOLD_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("LINKFOLD_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("LINKFOLD_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("LINKFOLD_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("LINKFOLD_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("LINKFOLD_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LINKFOLD_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LINKFOLD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LINKFOLD_TRUST_PROXY", false),
	}

	switch cfg.Store {
	case StoreSQLite:
		cfg.SQLiteDSN = requireEnv("LINKFOLD_SQLITE_DSN")
	case StoreRedis:
		if cfg.RedisURL == "" {
			cfg.RedisAddr = requireEnv("LINKFOLD_REDIS_ADDR")
		}
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreRedis:
		if c.RedisURL == "" && c.RedisAddr == "" {
			return errors.New("LINKFOLD_REDIS_ADDR or LINKFOLD_REDIS_URL is required when LINKFOLD_STORE=redis")
		}
		if c.RedisPasswordRequired && c.RedisPassword == "" && c.RedisURL == "" {
			return errors.New("LINKFOLD_REDIS_PASSWORD is required when LINKFOLD_REDIS_PASSWORD_REQUIRED=true")
		}
	case StoreSQLite:
		if c.SQLiteDSN == "" {
			return errors.New("LINKFOLD_SQLITE_DSN is required when LINKFOLD_STORE=sqlite")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown LINKFOLD_STORE %q (want redis, sqlite or memory)", c.Store)
	}

	if c.RecordTTL < 0 {
		return fmt.Errorf("LINKFOLD_RECORD_TTL must not be negative, got %s", c.RecordTTL)
	}
	if c.BatchLargeThreshold < 0 || c.BatchMaxRows < 0 {
		return errors.New("batch row limits must not be negative")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisURL != "" {
		cp.RedisURL = "***REDACTED***"
	}
	if strings.Contains(cp.SQLiteDSN, "authToken=") {
		cp.SQLiteDSN = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
