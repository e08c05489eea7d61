package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath      string
	RawMailDir  string
	OutputDir   string
	TemplateDir string

	HTTPAddr       string
	LogLevel       string
	LogFormat      string
	SessionTTLMin  int
	CatalogCSVURL  string
	CatalogTimeout int

	ExchangeTemplate string
	TransferTemplate string

	VFBaseURL      string
	VFTimeoutMs    int
	VFRateLimitRPS int

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	ListenerProvider    string
	ListenerLabel       string
	ListenerIntervalSec int
	ListenerFetchMax    int
	ListenerBatch       int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:      getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawMailDir:  getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:   getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		TemplateDir: getEnv("TEMPLATE_DIR", filepath.Join(cwd, "templates")),

		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		SessionTTLMin:  getEnvInt("SESSION_TTL_MIN", 240),
		CatalogCSVURL:  getEnv("CATALOG_CSV_URL", "https://raw.githubusercontent.com/LojasMimi/transferencia_loja/refs/heads/main/cad_concatenado.csv"),
		CatalogTimeout: getEnvInt("CATALOG_TIMEOUT_MS", 60000),

		ExchangeTemplate: getEnv("EXCHANGE_TEMPLATE", "FORM-TROCAS.xlsx"),
		TransferTemplate: getEnv("TRANSFER_TEMPLATE", "FORMULARIO DE TRANSFERENCIA ENTRE LOJAS.xlsx"),

		VFBaseURL:      getEnv("VF_API_BASE_URL", "https://lojasmimi.varejofacil.com/api"),
		VFTimeoutMs:    getEnvInt("VF_TIMEOUT_MS", 30000),
		VFRateLimitRPS: getEnvInt("VF_RATE_LIMIT_RPS", 5),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		ListenerProvider:    getEnv("ORDER_LISTENER_PROVIDER", "imap"),
		ListenerLabel:       getEnv("ORDER_LISTENER_LABEL", "INBOX"),
		ListenerIntervalSec: getEnvInt("ORDER_LISTENER_INTERVAL_SEC", 60),
		ListenerFetchMax:    getEnvInt("ORDER_LISTENER_FETCH_MAX", 20),
		ListenerBatch:       getEnvInt("ORDER_LISTENER_PROCESS_BATCH", 20),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// TemplatePath resolves a template file name against TemplateDir
// unless it is already absolute.
func (c Config) TemplatePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.TemplateDir, name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
