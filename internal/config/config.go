package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	Environment string
	LogFilePath string
	CorsOrigins []string

	PostgresDSN    string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	LLM    LLMConfig
	Tutor  TutorConfig
	Timing TimingConfig
}

// LLMConfig points at the completion service.
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// TutorConfig bounds a single tutoring session.
type TutorConfig struct {
	TokenLimit     int
	SessionIdleTTL time.Duration
}

// TimingConfig drives the synthetic progress playback and the typing reveal.
type TimingConfig struct {
	RevealTick         time.Duration
	RevealDelay        time.Duration
	PlanProgressTick   time.Duration
	ReportProgressTick time.Duration
	PlanSettleDelay    time.Duration
	ReportSettleDelay  time.Duration
}

// IsProduction reports whether GO_ENV selects production logging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		Port:        getenv("PORT", "8080"),
		Environment: getenv("GO_ENV", "development"),
		LogFilePath: getenv("LOG_FILE_PATH", "science-tutor.log"),
		CorsOrigins: getenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),

		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "science_tutor"),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "tutor-documents"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",

		LLM: LLMConfig{
			BaseURL: getenv("LLM_BASE_URL", "https://api.anthropic.com"),
			APIKey:  getenv("LLM_API_KEY", ""),
			Model:   getenv("LLM_MODEL", "claude-sonnet-4-20250514"),
			Timeout: getenvDuration("LLM_TIMEOUT", 2*time.Minute),
		},
		Tutor: TutorConfig{
			TokenLimit:     getenvInt("TOKEN_LIMIT", 20000),
			SessionIdleTTL: getenvDuration("SESSION_IDLE_TTL", 2*time.Hour),
		},
		Timing: TimingConfig{
			RevealTick:         getenvDuration("REVEAL_TICK", 30*time.Millisecond),
			RevealDelay:        getenvDuration("REVEAL_DELAY", 100*time.Millisecond),
			PlanProgressTick:   getenvDuration("PLAN_PROGRESS_TICK", 600*time.Millisecond),
			ReportProgressTick: getenvDuration("REPORT_PROGRESS_TICK", 700*time.Millisecond),
			PlanSettleDelay:    getenvDuration("PLAN_SETTLE_DELAY", 500*time.Millisecond),
			ReportSettleDelay:  getenvDuration("REPORT_SETTLE_DELAY", time.Second),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: %s=%q is not a duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
