package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Port             string
	DBPath           string
	JWTSecret        string
	TokenTTL         time.Duration
	BackendBaseURL   string
	BackendTimeout   time.Duration
	SessionTTL       time.Duration
	GoogleMapsAPIKey string
	LogLevel         string
	Development      bool
	RateLimitPerMin  int
	AttemptRetention time.Duration
}

// Load reads the environment, after loading a .env file when one exists.
func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}
	if !strings.Contains(port, ":") {
		port = ":" + port
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/serendigo.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	backend := os.Getenv("API_BASE_URL")
	if backend == "" {
		backend = os.Getenv("BACKEND_ORIGIN")
	}
	if backend == "" {
		backend = "http://localhost:8000"
	}

	return &Config{
		Port:             port,
		DBPath:           dbPath,
		JWTSecret:        jwtSecret,
		TokenTTL:         envDuration("TOKEN_TTL_HOURS", 72, time.Hour),
		BackendBaseURL:   strings.TrimRight(backend, "/"),
		BackendTimeout:   envDuration("BACKEND_TIMEOUT_SECONDS", 15, time.Second),
		SessionTTL:       envDuration("SESSION_TTL_MINUTES", 30, time.Minute),
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		Development:      os.Getenv("GIN_MODE") != "release",
		RateLimitPerMin:  envInt("RATE_LIMIT_PER_MINUTE", 60),
		AttemptRetention: envDuration("ATTEMPT_RETENTION_DAYS", 30, 24*time.Hour),
	}
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def int, unit time.Duration) time.Duration {
	return time.Duration(envInt(key, def)) * unit
}
