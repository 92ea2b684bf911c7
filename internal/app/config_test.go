package app

import (
	"testing"
	"time"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.SyncTimeout != 10*time.Second {
		t.Errorf("expected SyncTimeout 10s, got %s", cfg.SyncTimeout)
	}
	if cfg.KafkaEnabled() {
		t.Error("kafka should be disabled by default")
	}
	if cfg.PostgresDSN != "" {
		t.Error("timeline should be in memory by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	cfg, err := configFromEnv(lookupFrom(map[string]string{
		"BACKOFFICE_HTTP_ADDR":            "127.0.0.1:8181",
		"BACKOFFICE_STORE_URL":            "http://store:3001",
		"BACKOFFICE_SYNC_TIMEOUT":         "3s",
		"BACKOFFICE_KAFKA_BROKERS":        " kafka-1:9092, ,kafka-2:9092 ",
		"BACKOFFICE_KAFKA_CHANGES_TOPIC":  "changes",
		"BACKOFFICE_CORS_ORIGINS":         "http://localhost:5173",
		"BACKOFFICE_NOTIFICATION_HISTORY": "5",
		"BACKOFFICE_POSTGRES_DSN":         "postgres://backoffice@db/backoffice",
		"BACKOFFICE_METRICS_ADDR":         "   ",
	}))
	if err != nil {
		t.Fatalf("configFromEnv: %v", err)
	}

	if cfg.HTTPAddr != "127.0.0.1:8181" || cfg.StoreURL != "http://store:3001" {
		t.Errorf("unexpected addresses: %+v", cfg)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("blank value must keep default, got %q", cfg.MetricsAddr)
	}
	if cfg.SyncTimeout != 3*time.Second {
		t.Errorf("expected SyncTimeout 3s, got %s", cfg.SyncTimeout)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" || !cfg.KafkaEnabled() {
		t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.KafkaChangesTopic != "changes" || cfg.KafkaTopic != "backoffice.order.events" {
		t.Errorf("unexpected topics: %s %s", cfg.KafkaTopic, cfg.KafkaChangesTopic)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.NotificationHistory != 5 {
		t.Errorf("unexpected cors/history: %v %d", cfg.CORSOrigins, cfg.NotificationHistory)
	}
	if cfg.PostgresDSN == "" {
		t.Error("expected PostgresDSN to be set")
	}
}

func TestConfigFromEnv_InvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad duration", env: map[string]string{"BACKOFFICE_STORE_TIMEOUT": "soon"}},
		{name: "bad int", env: map[string]string{"BACKOFFICE_NOTIFICATION_HISTORY": "many"}},
		{name: "zero sync timeout", env: map[string]string{"BACKOFFICE_SYNC_TIMEOUT": "0s"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := configFromEnv(lookupFrom(tc.env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestConfig_ValidateRequiresStoreURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StoreURL = " "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty store url")
	}
}
