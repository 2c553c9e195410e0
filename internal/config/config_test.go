package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AaronLay10/WishEngine/internal/fortune"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func clearServiceEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"WISH_SERVICE_NAME", "WISH_HTTP_PORT", "WISH_CATALOG",
		"WISH_JOURNAL_DRIVER", "WISH_JOURNAL_DSN", "WISH_JOURNAL_OPTIONAL",
		"WISH_MQTT_URL", "WISH_MQTT_CLIENT_ID", "WISH_MQTT_TOPIC_PREFIX", "WISH_MQTT_USER",
		"WISH_MQTT_PUBLISH_TIMEOUT",
		"WISH_ALERT_WEBHOOK_URL", "WISH_ALERT_COOLDOWN",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()

	if len(cat.Machines) != 4 {
		t.Errorf("expected 4 machines, got %d", len(cat.Machines))
	}
	if !cat.HasMachine("emerald-craft") {
		t.Error("expected emerald-craft in default catalog")
	}
	if len(cat.Scenes) != 4 {
		t.Fatalf("expected 4 scenes, got %d", len(cat.Scenes))
	}
	if cat.Scenes[3].ID != "emerald_forest" || cat.Scenes[3].Label != "Emerald Forest" {
		t.Errorf("unexpected last scene: %+v", cat.Scenes[3])
	}
	if got := cat.MissBuckets; len(got) != 4 || got[1] != "0~1" || got[3] != "6+" {
		t.Errorf("unexpected miss buckets: %v", got)
	}
}

func TestLoadChineseCatalog(t *testing.T) {
	cat, err := LoadCatalog("../../configs/paradise.zh.yaml")
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	if !cat.HasMachine("翠林机") {
		t.Error("expected 翠林机 in catalog")
	}
	scenes, err := fortune.FilterScenes("翠林机", cat.Scenes)
	if err != nil {
		t.Fatalf("unexpected filter error: %v", err)
	}
	for _, s := range scenes {
		if s.ID == "sky" {
			t.Error("emerald machine should not see the sky scene")
		}
	}
}

func TestParseCatalogErrors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":    "version: [",
		"bad version": "version: 2\nmachines: [a]\n",
		"no eligible scene": `version: 1
machines: [land-craft]
scenes:
  - id: emerald_forest
    label: Emerald Forest
    food_categories: [omnivore]
miss_num:
  count: ["0"]
`,
		"empty food": `version: 1
machines: [land-craft]
scenes:
  - id: land
    label: Land
    food_categories: []
miss_num:
  count: ["0"]
`,
	}
	for name, body := range cases {
		if _, err := ParseCatalog([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	_, err := ParseCatalog([]byte(cases["no eligible scene"]))
	if !errors.Is(err, fortune.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadServiceConfigFromFile(t *testing.T) {
	clearServiceEnv(t)
	path := writeFile(t, "service.yaml", `version: 1
service:
  name: wish-test
network:
  http_port: 9090
catalog:
  path: /etc/wish/paradise.yaml
journal:
  driver: sqlite
  dsn: /tmp/wish.db
mqtt:
  broker: tcp://broker:1883
  publish_timeout: 200ms
alerts:
  cooldown: 30s
`)

	cfg, err := LoadServiceConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name() != "wish-test" {
		t.Errorf("name: got %q", cfg.Name())
	}
	if cfg.HTTPPort() != 9090 {
		t.Errorf("port: got %d", cfg.HTTPPort())
	}
	if cfg.Catalog.Path != "/etc/wish/paradise.yaml" {
		t.Errorf("catalog path: got %q", cfg.Catalog.Path)
	}
	if cfg.Journal.Driver != "sqlite" || cfg.Journal.DSN != "/tmp/wish.db" {
		t.Errorf("journal: got %+v", cfg.Journal)
	}
	if !cfg.MQTTEnabled() || cfg.MQTTClientID() != "wish-test" || cfg.MQTTTopicPrefix() != "wish" {
		t.Errorf("mqtt: got %+v", cfg.MQTT)
	}
	if cfg.MQTT.PublishTimeout != 200*time.Millisecond {
		t.Errorf("mqtt publish timeout: got %s", cfg.MQTT.PublishTimeout)
	}
	if cfg.AlertCooldown() != 30*time.Second {
		t.Errorf("cooldown: got %s", cfg.AlertCooldown())
	}
}

func TestLoadServiceConfigEnvOverrides(t *testing.T) {
	clearServiceEnv(t)
	path := writeFile(t, "service.yaml", "version: 1\nnetwork:\n  http_port: 9090\n")
	t.Setenv("WISH_HTTP_PORT", "7070")
	t.Setenv("WISH_JOURNAL_DRIVER", "postgres")
	t.Setenv("WISH_ALERT_COOLDOWN", "1m")

	cfg, err := LoadServiceConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort() != 7070 {
		t.Errorf("expected env port 7070, got %d", cfg.HTTPPort())
	}
	if cfg.Journal.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %q", cfg.Journal.Driver)
	}
	if cfg.AlertCooldown() != time.Minute {
		t.Errorf("expected 1m cooldown, got %s", cfg.AlertCooldown())
	}
}

func TestLoadServiceConfigDefaults(t *testing.T) {
	clearServiceEnv(t)

	cfg, err := LoadServiceConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name() != "wish-engine" || cfg.HTTPPort() != 8080 {
		t.Errorf("unexpected defaults: name=%q port=%d", cfg.Name(), cfg.HTTPPort())
	}
	if cfg.MQTTEnabled() {
		t.Error("mqtt should be disabled by default")
	}
	if cfg.AlertCooldown() != 5*time.Minute {
		t.Errorf("unexpected default cooldown: %s", cfg.AlertCooldown())
	}
}

func TestLoadServiceConfigRejects(t *testing.T) {
	clearServiceEnv(t)

	badVersion := writeFile(t, "v2.yaml", "version: 2\n")
	if _, err := LoadServiceConfig(badVersion); err == nil {
		t.Error("expected error for unsupported version")
	}

	badDriver := writeFile(t, "driver.yaml", "version: 1\njournal:\n  driver: mongo\n")
	if _, err := LoadServiceConfig(badDriver); err == nil {
		t.Error("expected error for unsupported journal driver")
	}
}

func TestLoadServiceConfigTOML(t *testing.T) {
	clearServiceEnv(t)
	path := writeFile(t, "service.toml", `version = 1

[service]
name = "wish-toml"

[network]
http_port = 9191

[journal]
driver = "sqlite"
dsn = "events.db"
optional = true

[alerts]
cooldown = "2m"
`)

	cfg, err := LoadServiceConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name() != "wish-toml" || cfg.HTTPPort() != 9191 {
		t.Errorf("unexpected service: name=%q port=%d", cfg.Name(), cfg.HTTPPort())
	}
	if cfg.Journal.Driver != "sqlite" || !cfg.Journal.Optional {
		t.Errorf("unexpected journal: %+v", cfg.Journal)
	}
	if cfg.AlertCooldown() != 2*time.Minute {
		t.Errorf("unexpected cooldown: %s", cfg.AlertCooldown())
	}

	bad := writeFile(t, "bad.toml", "version = [")
	if _, err := LoadServiceConfig(bad); err == nil {
		t.Error("expected parse error for malformed toml")
	}
}
