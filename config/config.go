package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BaseURL    string
	SearchPath string

	PageStride     int
	MaxLinks       int
	SkipPageErrors bool
	PageWait       time.Duration
	PageTimeout    time.Duration

	MaxConcurrency int
	MaxRetries     int
	RetryBaseDelay time.Duration
	FetchTimeout   time.Duration
	UserAgent      string
	PhotoEndpoint  string

	JSONOutputPath string
	CSVOutputPath  string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ChromeBin string
	LogLevel  string
	LogColor  bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		BaseURL:    strings.TrimRight(getEnv("BASE_URL", "https://realtylink.org"), "/"),
		SearchPath: getEnv("SEARCH_PATH", "/en/properties~for-rent"),

		PageStride:     getEnvInt("PAGE_STRIDE", 20),
		MaxLinks:       getEnvInt("MAX_LINKS", 0),
		SkipPageErrors: getEnvBool("SKIP_PAGE_ERRORS", false),
		PageWait:       getEnvMillis("PAGE_WAIT_MS", 2000),
		PageTimeout:    getEnvSeconds("PAGE_TIMEOUT_SEC", 60),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 10),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelay: getEnvMillis("RETRY_BASE_DELAY_MS", 1000),
		FetchTimeout:   getEnvSeconds("FETCH_TIMEOUT_SEC", 30),
		UserAgent:      getEnv("USER_AGENT", defaultUserAgent),
		PhotoEndpoint:  getEnv("PHOTO_ENDPOINT", "https://realtylink.org/Property/PhotoViewerDataListing"),

		JSONOutputPath: getEnv("JSON_OUTPUT_PATH", "./output/output.json"),
		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ChromeBin: getEnv("CHROME_BIN", ""),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogColor:  getEnvBool("LOG_COLOR", true),
	}
}

// SearchURL is the first page of the search results listing.
func (c *Config) SearchURL() string {
	return c.BaseURL + c.SearchPath
}

// Headers returns the request headers sent with every detail and photo request.
func (c *Config) Headers() map[string]string {
	return map[string]string{
		"User-Agent":      c.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
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

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
