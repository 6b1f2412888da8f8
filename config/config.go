package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	URLsFile       string
	NoticeURLsFile string
	SnapshotDir    string

	MaxNoGrowth    int
	MaxScrollLoops int
	MaxReviews     int
	ScrollWaitMs   int
	ListingDelayMs int
	MaxRetries     int

	RatingsUpsert bool
	AutoAnalyze   bool
	Headless      bool
	ChromeBin     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "compliance_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		URLsFile:       getEnv("URLS_FILE", "urls.txt"),
		NoticeURLsFile: getEnv("NOTICE_URLS_FILE", "notice_urls.txt"),
		SnapshotDir:    getEnv("SNAPSHOT_DIR", "./output"),

		MaxNoGrowth:    getEnvInt("MAX_NO_GROWTH", 5),
		MaxScrollLoops: getEnvInt("MAX_SCROLL_LOOPS", 20),
		MaxReviews:     getEnvInt("MAX_REVIEWS", 1000),
		ScrollWaitMs:   getEnvInt("SCROLL_WAIT_MS", 2000),
		ListingDelayMs: getEnvInt("LISTING_DELAY_MS", 3000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		RatingsUpsert: getEnvBool("RATINGS_UPSERT", false),
		AutoAnalyze:   getEnvBool("AUTO_ANALYZE", false),
		Headless:      getEnvBool("HEADLESS", true),
		ChromeBin:     getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
