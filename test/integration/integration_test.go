package integration

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/outright-forecast/internal/cases"
	"github.com/iwvelando/outright-forecast/internal/client"
	"github.com/iwvelando/outright-forecast/internal/config"
	"github.com/iwvelando/outright-forecast/internal/database"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/server"
	"github.com/iwvelando/outright-forecast/internal/session"
	"github.com/iwvelando/outright-forecast/pkg/mathutil"
	"github.com/iwvelando/outright-forecast/pkg/output"
	"github.com/iwvelando/outright-forecast/pkg/testutil"
	"go.uber.org/zap"
)

// startStack loads the test configuration and serves a fresh in-memory case
// store, returning a client pointed at it.
func startStack(t *testing.T) (*config.Configuration, *client.Client) {
	t.Helper()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	db, err := database.New(database.Config{Path: database.MemoryPath, Name: "cases"})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	srv := httptest.NewServer(server.NewHandler(server.Options{
		Logger:  zap.NewNop(),
		Store:   cases.NewRepository(db.Conn(), zap.NewNop()),
		Year:    conf.Year,
		Version: "integration",
	}))
	t.Cleanup(srv.Close)

	return conf, client.New(srv.URL, conf.Server.Timeout, zap.NewNop())
}

// TestEndToEndWorkflow drives a session through compute, save, load and
// compare against a live server.
func TestEndToEndWorkflow(t *testing.T) {
	conf, api := startStack(t)
	ctx := context.Background()

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Fatalf("expected clean test configuration, got %v", warnings)
	}

	mgr := session.New(session.Options{
		Store:    api,
		Compute:  api,
		Logger:   zap.NewNop(),
		Schedule: conf.Schedule(),
	})

	if err := mgr.SetMeeting("2026-01-28", "-25bps"); err != nil {
		t.Fatalf("SetMeeting() error = %v", err)
	}
	rows, err := mgr.Compute(ctx)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	raw := metrics.Raw(rows)

	feb := testutil.FindMonth(raw, "Feb 2026")
	if feb == nil {
		t.Fatal("expected a Feb 2026 row")
	}
	if !mathutil.WithinTolerance(feb.Outright, 95.0, 1e-9) {
		t.Errorf("Feb outright = %v, expected 95.0", feb.Outright)
	}
	jan := testutil.FindMonth(raw, "Jan 2026")
	if jan == nil || !mathutil.WithinTolerance(jan.Outright, 94.7742, 1e-9) {
		t.Errorf("Jan row = %+v, expected outright 94.7742", jan)
	}

	cut, err := mgr.Create(ctx, "January cut")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	mgr.Reset()
	hold, err := mgr.Create(ctx, "Hold")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(mgr.Cases()) != 2 {
		t.Fatalf("expected 2 cases in the listing, got %d", len(mgr.Cases()))
	}

	if _, err := mgr.Load(ctx, cut.ID); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := mgr.Inputs().Meetings["2026-01-28"]; got != "-25bps" {
		t.Errorf("expected raw meeting value -25bps restored, got %s", got)
	}
	if len(mgr.Results()) != 12 {
		t.Errorf("expected 12 stored months, got %d", len(mgr.Results()))
	}

	cmp, err := mgr.Compare(ctx, []string{cut.ID, hold.ID})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if cmp.Outrights[1][0].String() != "95.0000" || cmp.Outrights[1][1].String() != "94.7500" {
		t.Errorf("unexpected Feb outrights %s / %s", cmp.Outrights[1][0], cmp.Outrights[1][1])
	}

	var buf bytes.Buffer
	if err := output.CsvComparison(&buf, cmp); err != nil {
		t.Fatalf("CsvComparison() error = %v", err)
	}
	if !strings.Contains(buf.String(), "January cut") || !strings.Contains(buf.String(), "Hold") {
		t.Errorf("comparison CSV missing case names:\n%s", buf.String())
	}

	if err := mgr.Delete(ctx, cut.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if mgr.State() != session.NoActiveCase {
		t.Errorf("expected no active case after deleting it, got %s", mgr.State())
	}
}

// TestCSVOutputFormat checks the series CSV produced for computed results.
func TestCSVOutputFormat(t *testing.T) {
	_, api := startStack(t)

	raw, err := api.Compute(context.Background(), sessionDefaults(t))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, metrics.DeriveSeries(raw)); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 13 {
		t.Fatalf("expected header plus 12 months, got %d lines", len(lines))
	}
	if lines[0] != "Month,Rate (%),Outright,1M Spread" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "Jan 2026,5.2500,94.7500,0.0000" {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.HasSuffix(lines[12], ",N/A") {
		t.Errorf("expected final spread N/A, got %q", lines[12])
	}
}

// TestConfigurationValidation loads a configuration with a suspect meeting
// schedule and checks the warnings.
func TestConfigurationValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
year: 2026
meetings:
  - "2026-01-28"
  - "2026-01-28"
  - "2026-03-21"
  - "2027-01-27"
  - "March 18"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %d: %v", len(warnings), warnings)
	}

	schedule := conf.Schedule()
	if len(schedule) != 3 {
		t.Errorf("expected 3 usable meetings, got %v", schedule)
	}
}
