package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultBusinessTypes is the category phrase used when none is configured.
const DefaultBusinessTypes = "Warehouses, factories, gyms, apartment buildings, middle schools, " +
	"high schools, nursing homes, mobile home parks, RV parks, trailer parks, " +
	"auto repair shops, laundromats, motels"

// ErrNoZipCodes is returned by Validate when no target zip code is configured.
var ErrNoZipCodes = errors.New("config: no zip codes defined (set ZIP_CODES)")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	InputDir          string
	OutputDir         string
	OutputFilename    string
	CSVOutputFilename string
	QueriesFilename   string

	BusinessTypes  string
	ZipCodes       []string
	States         []string
	ZipCheckLength int
	MinReviews     int
	CountryFilters []string

	DefaultFilePrefix  string
	FallbackSourceName string

	TaxonomyPath string
	Taxonomy     *Taxonomy

	Workers    int
	MaxRetries int

	StoreDriver      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string

	MetricsPath string
	Debug       bool
}

// Load reads the .env file (when present), the environment and the optional
// taxonomy file, and returns a populated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		InputDir:          getEnv("INPUT_DIR", "./Files"),
		OutputDir:         getEnv("OUTPUT_DIR", "./Outputs"),
		OutputFilename:    getEnv("OUTPUT_FILENAME", "leads.xlsx"),
		CSVOutputFilename: getEnv("CSV_OUTPUT_FILENAME", ""),
		QueriesFilename:   getEnv("QUERIES_FILENAME", "queriesToSearch.txt"),

		BusinessTypes:  getEnv("TARGET_BUSINESS_TYPES", DefaultBusinessTypes),
		ZipCodes:       getEnvList("ZIP_CODES", nil),
		States:         getEnvList("STATES", nil),
		ZipCheckLength: getEnvInt("ZIP_CHECK_LENGTH", 30),
		MinReviews:     getEnvInt("MIN_REVIEWS", 4),
		CountryFilters: getEnvList("COUNTRY_FILTERS", []string{"United States"}),

		DefaultFilePrefix:  getEnv("DEFAULT_FILE_PREFIX", "default"),
		FallbackSourceName: getEnv("FALLBACK_SOURCE_NAME", "Scraped New"),

		TaxonomyPath: getEnv("TAXONOMY_PATH", ""),

		Workers:    getEnvInt("WORKERS", 4),
		MaxRetries: getEnvInt("MAX_RETRIES", 3),

		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", "")),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "leads"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "leads123"),
		PostgresDB:       getEnv("POSTGRES_DB", "leads_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/leads.db"),

		MetricsPath: getEnv("METRICS_PATH", ""),
		Debug:       getEnvBool("DEBUG", false),
	}

	tax, err := LoadTaxonomy(cfg.TaxonomyPath)
	if err != nil {
		return nil, err
	}
	cfg.Taxonomy = tax

	return cfg, nil
}

// Validate reports configuration errors that make a run impossible.
func (c *Config) Validate() error {
	if len(c.ZipCodes) == 0 {
		return ErrNoZipCodes
	}
	if c.ZipCheckLength <= 0 {
		return fmt.Errorf("config: ZIP_CHECK_LENGTH must be positive, got %d", c.ZipCheckLength)
	}
	switch c.StoreDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
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

// OutputPath is the combined spreadsheet location.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFilename)
}

// QueriesPath is the follow-up query file location.
func (c *Config) QueriesPath() string {
	return filepath.Join(c.OutputDir, c.QueriesFilename)
}

// CSVOutputPath is the optional CSV copy of the combined leads, or "".
func (c *Config) CSVOutputPath() string {
	if c.CSVOutputFilename == "" {
		return ""
	}
	return filepath.Join(c.OutputDir, c.CSVOutputFilename)
}

// SplitList splits a comma-separated value, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
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

func getEnvList(key string, fallback []string) []string {
	if val := os.Getenv(key); val != "" {
		return SplitList(val)
	}
	return fallback
}
