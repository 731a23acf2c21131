package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort            = "8080"
	defaultHost            = "127.0.0.1"
	defaultLedgerPath      = "historial_estado_productos.json"
	defaultOutputDir       = "paginas"
	defaultWorkers         = 4
	defaultURLCheckTimeout = 5 * time.Second
)

// Config holds the settings read from the environment (and .env in development)
type Config struct {
	Host string
	Port string

	LedgerPath  string
	DatabaseURL string

	PageTemplatePath string
	CardTemplatePath string
	CatalogPath      string
	OutputDir        string
	LogoMapPath      string
	LinksPath        string
	AnchorsPath      string

	Workers         int
	URLCheckTimeout time.Duration

	ChromePath      string
	CredentialsPath string
	DriveFolderID   string
}

// Addr returns the listen address
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Load reads the configuration from environment variables
func Load() (Config, error) {
	cfg := Config{
		Host:             getEnv("HOST", defaultHost),
		Port:             strings.TrimPrefix(getEnv("PORT", defaultPort), ":"),
		LedgerPath:       getEnv("LEDGER_PATH", defaultLedgerPath),
		DatabaseURL:      databaseURL(),
		PageTemplatePath: os.Getenv("PAGE_TEMPLATE_PATH"),
		CardTemplatePath: os.Getenv("CARD_TEMPLATE_PATH"),
		CatalogPath:      os.Getenv("CATALOG_PATH"),
		OutputDir:        getEnv("OUTPUT_DIR", defaultOutputDir),
		LogoMapPath:      os.Getenv("LOGO_MAP_PATH"),
		LinksPath:        os.Getenv("LINKS_PATH"),
		AnchorsPath:      os.Getenv("ANCHORS_PATH"),
		Workers:          defaultWorkers,
		URLCheckTimeout:  defaultURLCheckTimeout,
		ChromePath:       os.Getenv("CHROME_PATH"),
		CredentialsPath:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DriveFolderID:    os.Getenv("DRIVE_FOLDER_ID"),
	}

	if raw := strings.TrimSpace(os.Getenv("WORKERS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid WORKERS %q: must be a positive integer", raw)
		}
		cfg.Workers = n
	}

	if raw := strings.TrimSpace(os.Getenv("URL_CHECK_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid URL_CHECK_TIMEOUT %q: must be a positive duration", raw)
		}
		cfg.URLCheckTimeout = d
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// databaseURL returns DATABASE_URL, or a DSN built from DB_* variables, or "" when
// no database is configured (the ledger then stays on the JSON file)
func databaseURL() string {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		return connStr
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return ""
	}

	port := getEnv("DB_PORT", "5432")
	sslmode := getEnv("DB_SSLMODE", "disable")
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, os.Getenv("DB_PASSWORD"), dbname, sslmode)
}
