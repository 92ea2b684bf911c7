package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config описывает настройки запуска back office.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StoreURL     string
	StoreTimeout time.Duration

	// SyncTimeout ограничивает один фоновый PATCH/DELETE.
	SyncTimeout time.Duration
	// DeleteTimeout ограничивает ожидание ответа хранилища в DELETE /api/orders/:id.
	DeleteTimeout   time.Duration
	ShutdownTimeout time.Duration
	InitialLoad     RetryConfig

	KafkaBrokers      []string
	KafkaTopic        string
	KafkaChangesTopic string

	// PostgresDSN включает хранение журнала событий в PostgreSQL.
	PostgresDSN string

	CORSOrigins         []string
	NotificationHistory int
	LogLevel            string
}

// DefaultConfig возвращает настройки для локального запуска рядом со стабом хранилища.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StoreURL:            "http://localhost:3001",
		StoreTimeout:        10 * time.Second,
		SyncTimeout:         10 * time.Second,
		DeleteTimeout:       15 * time.Second,
		ShutdownTimeout:     10 * time.Second,
		InitialLoad:         DefaultRetryConfig(),
		KafkaTopic:          "backoffice.order.events",
		KafkaChangesTopic:   "storefront.order.changes",
		NotificationHistory: 50,
		LogLevel:            "info",
	}
}

// ReadConfig загружает .env (если есть) и переопределяет значения по умолчанию
// переменными окружения BACKOFFICE_*.
func ReadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to load .env, using process environment")
	}
	return configFromEnv(os.LookupEnv)
}

func configFromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	env := envReader{lookup: lookup}

	cfg.HTTPAddr = env.string("BACKOFFICE_HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = env.string("BACKOFFICE_METRICS_ADDR", cfg.MetricsAddr)
	cfg.StoreURL = env.string("BACKOFFICE_STORE_URL", cfg.StoreURL)
	cfg.StoreTimeout = env.duration("BACKOFFICE_STORE_TIMEOUT", cfg.StoreTimeout)
	cfg.SyncTimeout = env.duration("BACKOFFICE_SYNC_TIMEOUT", cfg.SyncTimeout)
	cfg.DeleteTimeout = env.duration("BACKOFFICE_DELETE_TIMEOUT", cfg.DeleteTimeout)
	cfg.ShutdownTimeout = env.duration("BACKOFFICE_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.InitialLoad.MaxAttempts = env.int("BACKOFFICE_INITIAL_LOAD_ATTEMPTS", cfg.InitialLoad.MaxAttempts)
	cfg.KafkaBrokers = env.list("BACKOFFICE_KAFKA_BROKERS")
	cfg.KafkaTopic = env.string("BACKOFFICE_KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.KafkaChangesTopic = env.string("BACKOFFICE_KAFKA_CHANGES_TOPIC", cfg.KafkaChangesTopic)
	cfg.PostgresDSN = env.string("BACKOFFICE_POSTGRES_DSN", "")
	cfg.CORSOrigins = env.list("BACKOFFICE_CORS_ORIGINS")
	cfg.NotificationHistory = env.int("BACKOFFICE_NOTIFICATION_HISTORY", cfg.NotificationHistory)
	cfg.LogLevel = env.string("BACKOFFICE_LOG_LEVEL", cfg.LogLevel)

	if env.err != nil {
		return Config{}, env.err
	}
	return cfg, cfg.Validate()
}

// Validate проверяет обязательные значения.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("BACKOFFICE_HTTP_ADDR is required")
	}
	if strings.TrimSpace(c.StoreURL) == "" {
		return fmt.Errorf("BACKOFFICE_STORE_URL is required")
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("BACKOFFICE_SYNC_TIMEOUT must be positive, got %s", c.SyncTimeout)
	}
	return nil
}

// KafkaEnabled сообщает, настроены ли брокеры.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// envReader запоминает первую ошибку разбора.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *envReader) string(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("parse %s: %w", key, err)
		}
		return def
	}
	return d
}

func (r *envReader) int(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("parse %s: %w", key, err)
		}
		return def
	}
	return n
}

// list разбирает значения через запятую, пропуская пустые.
func (r *envReader) list(key string) []string {
	v, ok := r.raw(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
