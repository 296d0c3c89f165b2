package config

import (
	"errors"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CARD_COMMAND", "CARD_UPDATE_INTERVAL", "CARD_SUBSCRIPTION", "CARD_TIMEZONE",
		"WEBHOOK_URL", "PUBLISH_TIMEOUT", "HANDLE_STORE", "DATABASE_URL", "REDIS_ADDR",
		"MQTT_BROKER", "MQTT_TOPIC", "HTTP_ADDR", "METRICS_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadWithOptions_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.Command != "!serverpings" {
		t.Fatalf("Command = %q, want %q", cfg.Command, "!serverpings")
	}
	if cfg.UpdateInterval != 30*time.Second {
		t.Fatalf("UpdateInterval = %s, want 30s", cfg.UpdateInterval)
	}
	if cfg.Subscription != "default" {
		t.Fatalf("Subscription = %q", cfg.Subscription)
	}
	if cfg.Location != time.Local {
		t.Fatalf("Location = %v, want Local", cfg.Location)
	}
	if cfg.PublishTimeout != 10*time.Second {
		t.Fatalf("PublishTimeout = %s", cfg.PublishTimeout)
	}
	if cfg.HandleStore != HandleStoreMemory {
		t.Fatalf("HandleStore = %q", cfg.HandleStore)
	}
	if cfg.HTTPAddr != ":8080" || cfg.MQTTTopic != "pingcard/telemetry" {
		t.Fatalf("HTTPAddr = %q MQTTTopic = %q", cfg.HTTPAddr, cfg.MQTTTopic)
	}
}

func TestLoadWithOptions_ParsesInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARD_UPDATE_INTERVAL", "1500")

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.UpdateInterval != 1500*time.Millisecond {
		t.Fatalf("UpdateInterval = %s, want 1.5s", cfg.UpdateInterval)
	}
}

func TestLoadWithOptions_RejectsInvalidInterval(t *testing.T) {
	for _, raw := range []string{"0", "-5", "abc", "1.5", "30s"} {
		t.Run(raw, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CARD_UPDATE_INTERVAL", raw)

			_, err := LoadWithOptions(LoadOptions{})
			if !errors.Is(err, ErrInvalidInterval) {
				t.Fatalf("LoadWithOptions() error = %v, want ErrInvalidInterval", err)
			}
		})
	}
}

func TestLoadWithOptions_Timezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARD_TIMEZONE", "UTC")

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.Location.String() != "UTC" {
		t.Fatalf("Location = %v, want UTC", cfg.Location)
	}

	t.Setenv("CARD_TIMEZONE", "Nowhere/Invalid")
	if _, err := LoadWithOptions(LoadOptions{}); err == nil {
		t.Fatal("expected invalid timezone error")
	}
}

func TestLoadWithOptions_HandleStoreRequirements(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "postgres without url", env: map[string]string{"HANDLE_STORE": "postgres"}, wantErr: true},
		{name: "postgres", env: map[string]string{"HANDLE_STORE": "Postgres", "DATABASE_URL": "postgres://localhost/pingcard"}},
		{name: "redis without addr", env: map[string]string{"HANDLE_STORE": "redis"}, wantErr: true},
		{name: "redis", env: map[string]string{"HANDLE_STORE": "redis", "REDIS_ADDR": "localhost:6379"}},
		{name: "unknown", env: map[string]string{"HANDLE_STORE": "etcd"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithOptions(LoadOptions{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadWithOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_RequiresWebhookURL(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected WEBHOOK_URL error")
	}

	t.Setenv("WEBHOOK_URL", "https://chat.example.com/api/webhooks/1/token")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadWithOptions_ParsesPublishTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUBLISH_TIMEOUT", "3s")

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.PublishTimeout != 3*time.Second {
		t.Fatalf("PublishTimeout = %s, want 3s", cfg.PublishTimeout)
	}
}

func TestLoadWithOptions_RejectsInvalidPublishTimeout(t *testing.T) {
	for _, raw := range []string{"soon", "0s", "-1s", "5000"} {
		t.Run(raw, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("PUBLISH_TIMEOUT", raw)

			_, err := LoadWithOptions(LoadOptions{})
			if !errors.Is(err, ErrInvalidPublishTimeout) {
				t.Fatalf("LoadWithOptions() error = %v, want ErrInvalidPublishTimeout", err)
			}
		})
	}
}
