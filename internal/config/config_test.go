package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/outright-forecast/pkg/constants"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigurationMissingFileUsesDefaults(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Server.BaseURL != constants.DefaultBaseURL {
		t.Errorf("expected default base URL, got %s", conf.Server.BaseURL)
	}
	if conf.Server.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", conf.Server.Timeout)
	}
	if conf.Year != constants.DefaultForecastYear {
		t.Errorf("expected default year, got %d", conf.Year)
	}
	if len(conf.Meetings) != len(constants.DefaultMeetingDates) {
		t.Errorf("expected %d default meetings, got %d", len(constants.DefaultMeetingDates), len(conf.Meetings))
	}
	if conf.Output.Format != constants.OutputFormatPretty {
		t.Errorf("expected pretty output, got %s", conf.Output.Format)
	}
	if conf.Logging.Level != "warn" || conf.Logging.Format != "console" {
		t.Errorf("unexpected default logging config %+v", conf.Logging)
	}
}

func TestLoadConfigurationFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  baseURL: http://rates.internal:8080
  timeout: 5s
year: 2026
meetings:
  - "2026-03-18"
  - "2026-06-17"
logging:
  level: debug
  format: json
output:
  format: csv
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Server.BaseURL != "http://rates.internal:8080" {
		t.Errorf("unexpected base URL %s", conf.Server.BaseURL)
	}
	if conf.Server.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", conf.Server.Timeout)
	}
	if len(conf.Meetings) != 2 || conf.Meetings[1] != "2026-06-17" {
		t.Errorf("unexpected meetings %v", conf.Meetings)
	}
	if conf.Logging.Level != "debug" || conf.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", conf.Logging)
	}
	if conf.Output.Format != constants.OutputFormatCSV {
		t.Errorf("expected csv output, got %s", conf.Output.Format)
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  baseURL: http://from-file:5001\n")
	t.Setenv("OUTRIGHT_SERVER_BASEURL", "http://from-env:5001")

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Server.BaseURL != "http://from-env:5001" {
		t.Errorf("expected env override, got %s", conf.Server.BaseURL)
	}
}

func TestLoadConfigurationRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "Bad output format", content: "output:\n  format: xml\n"},
		{name: "Non-positive timeout", content: "server:\n  timeout: 0s\n"},
		{name: "Malformed YAML", content: "server: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadConfiguration() expected error but got none")
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	conf := &Configuration{
		Year:     2026,
		Meetings: []string{"2026-01-28", "2026-01-28", "2025-12-10", "not-a-date"},
	}
	warnings := conf.ValidateConfiguration()
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(warnings), warnings)
	}

	empty := &Configuration{Year: 2026}
	if got := empty.ValidateConfiguration(); len(got) != 1 {
		t.Errorf("expected a warning for an empty schedule, got %v", got)
	}

	clean := &Configuration{Year: 2026, Meetings: constants.DefaultMeetingDates}
	if got := clean.ValidateConfiguration(); len(got) != 0 {
		t.Errorf("expected no warnings for the default schedule, got %v", got)
	}
}

func TestSchedule(t *testing.T) {
	conf := &Configuration{
		Year:     2026,
		Meetings: []string{"2026-03-18", "bogus", "2026-01-28", "2026-03-18"},
	}
	schedule := conf.Schedule()
	if len(schedule) != 2 || schedule[0] != "2026-03-18" || schedule[1] != "2026-01-28" {
		t.Errorf("unexpected schedule %v", schedule)
	}
}
