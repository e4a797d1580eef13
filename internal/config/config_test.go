package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	yamlContent := `slack_bot_token: xoxb-yaml
slack_app_token: xapp-yaml
anthropic_api_key: sk-yaml
store_name: Loja Centro
attendance_inbox_dir: /srv/inbox/attendance
rescan_schedule: "*/30 * * * *"
`
	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("CONFIG_PATH", yamlPath)
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("TIMEZONE", "America/Sao_Paulo")

	cfg := LoadConfig()

	if cfg.SlackBotToken != "xoxb-env" {
		t.Errorf("env should override yaml, got %q", cfg.SlackBotToken)
	}
	if cfg.SlackAppToken != "xapp-yaml" {
		t.Errorf("yaml value lost, got %q", cfg.SlackAppToken)
	}
	if cfg.StoreName != "Loja Centro" {
		t.Errorf("store name = %q", cfg.StoreName)
	}
	if cfg.AttendanceInboxDir != "/srv/inbox/attendance" {
		t.Errorf("attendance inbox dir = %q", cfg.AttendanceInboxDir)
	}
	if cfg.RescanSchedule != "*/30 * * * *" {
		t.Errorf("rescan schedule = %q", cfg.RescanSchedule)
	}

	// Defaults kick in for everything the yaml left out.
	if cfg.LLMProvider != "anthropic" {
		t.Errorf("provider default = %q", cfg.LLMProvider)
	}
	if cfg.DBPath != ":memory:" {
		t.Errorf("db path default = %q", cfg.DBPath)
	}
	if cfg.Location == nil || cfg.Location.String() != "America/Sao_Paulo" {
		t.Errorf("location = %v", cfg.Location)
	}
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("SLACK_APP_TOKEN", "xapp-env")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg := LoadConfig()
	if cfg.LLMProvider != "openai" || cfg.OpenAIAPIKey != "sk-env" {
		t.Errorf("provider config = %q/%q", cfg.LLMProvider, cfg.OpenAIAPIKey)
	}
	if cfg.StoreName != "My Store" {
		t.Errorf("store name default = %q", cfg.StoreName)
	}
}
