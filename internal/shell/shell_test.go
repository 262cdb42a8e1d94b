package shell

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/outright-forecast/internal/cases"
	"github.com/iwvelando/outright-forecast/internal/client"
	"github.com/iwvelando/outright-forecast/internal/database"
	"github.com/iwvelando/outright-forecast/internal/server"
	"github.com/iwvelando/outright-forecast/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupShell(t *testing.T, input string) (*Shell, *bytes.Buffer) {
	t.Helper()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "cases.db"), Name: "cases"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	srv := httptest.NewServer(server.NewHandler(server.Options{
		Logger:  zap.NewNop(),
		Store:   cases.NewRepository(db.Conn(), zap.NewNop()),
		Version: "test",
	}))
	t.Cleanup(srv.Close)

	c := client.New(srv.URL, 5*time.Second, zap.NewNop())
	out := &bytes.Buffer{}
	sh := New(Options{
		Store:    c,
		Compute:  c,
		Server:   c,
		Schedule: []string{"2026-01-28"},
		In:       strings.NewReader(input),
		Out:      out,
		Now:      func() time.Time { return time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC) },
	})
	return sh, out
}

func run(t *testing.T, sh *Shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, sh.Execute(context.Background(), line), line)
	}
}

func TestComputeAndShow(t *testing.T) {
	sh, out := setupShell(t, "")

	run(t, sh, "meeting 2026-01-28 -25", "compute")

	assert.Contains(t, out.String(), "Jan 2026")
	assert.Contains(t, out.String(), "95.0000")
	assert.Len(t, sh.Session().Results(), 12)

	out.Reset()
	run(t, sh, "show")
	assert.Contains(t, out.String(), "2026-01-28")
	assert.Contains(t, out.String(), "-25")
}

func TestSetAndAdjust(t *testing.T) {
	sh, out := setupShell(t, "")

	run(t, sh, "set me 10bps", "up me", "up effr", "down 2026-01-28")

	in := sh.Session().Inputs()
	assert.Equal(t, "11bps", in.ME)
	assert.Equal(t, "5.50%", in.Effr)
	assert.Equal(t, "-1", in.Meetings["2026-01-28"])
	assert.Contains(t, out.String(), "me = 11bps")

	assert.Error(t, sh.Execute(context.Background(), "set bogus 1"))
	assert.Error(t, sh.Execute(context.Background(), "meeting tomorrow 1"))
}

func TestCaseLifecycleWithListingRefs(t *testing.T) {
	sh, out := setupShell(t, "")
	ctx := context.Background()

	run(t, sh, "set effr 5.25%", "save Base case", "set me 10", "save Month end")
	assert.Equal(t, session.NoActiveCase, sh.Session().State())
	require.Len(t, sh.Session().Cases(), 2)
	assert.Equal(t, "Base case", sh.Session().Cases()[0].Name)

	run(t, sh, "load #2")
	id, ok := sh.Session().State().Active()
	require.True(t, ok)
	assert.Equal(t, sh.Session().Cases()[1].ID, id)
	assert.Equal(t, "10", sh.Session().Inputs().ME)

	run(t, sh, "set qe 5", "update")
	assert.Contains(t, out.String(), "updated Month end")

	out.Reset()
	run(t, sh, "list")
	assert.Contains(t, out.String(), "* #2")

	run(t, sh, "delete #2")
	assert.Equal(t, session.NoActiveCase, sh.Session().State())
	assert.Len(t, sh.Session().Cases(), 1)

	assert.Error(t, sh.Execute(ctx, "load #5"))
}

func TestWarningsAreNotifiedOnce(t *testing.T) {
	sh, out := setupShell(t, "")

	err := sh.Execute(context.Background(), "update")
	assert.ErrorIs(t, err, session.ErrNoActiveCase)
	assert.Contains(t, out.String(), "warning: no case loaded")

	out.Reset()
	sh.printError(err)
	assert.Empty(t, out.String())
}

func TestCompareAndExport(t *testing.T) {
	sh, out := setupShell(t, "")
	dir := t.TempDir()

	run(t, sh, "save A", "meeting 2026-01-28 -25", "save B")
	out.Reset()
	run(t, sh, "compare #1 #2")
	assert.Contains(t, out.String(), "Outrights")

	run(t, sh, "compute",
		"export csv "+filepath.Join(dir, "series.csv"),
		"export xlsx "+filepath.Join(dir, "series.xlsx"),
		"export pdf "+filepath.Join(dir, "compare.pdf"),
	)

	csvData, err := os.ReadFile(filepath.Join(dir, "series.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csvData), "Month,Rate (%),Outright,1M Spread\n"))

	xlsxData, err := os.ReadFile(filepath.Join(dir, "series.xlsx"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsxData, []byte("PK")))

	pdfData, err := os.ReadFile(filepath.Join(dir, "compare.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfData, []byte("%PDF-")))

	assert.Error(t, sh.Execute(context.Background(), "export json out.json"))
}

func TestExportWithoutData(t *testing.T) {
	sh, _ := setupShell(t, "")
	dir := t.TempDir()

	assert.Error(t, sh.Execute(context.Background(), "export csv "+filepath.Join(dir, "a.csv")))
	assert.Error(t, sh.Execute(context.Background(), "export pdf "+filepath.Join(dir, "a.pdf")))
}

func TestRunResumesLatestCaseAndQuits(t *testing.T) {
	sh, out := setupShell(t, "status\nquit\nshow\n")
	ctx := context.Background()

	_, err := sh.Session().Create(ctx, "Earlier")
	require.NoError(t, err)
	_, err = sh.Session().Create(ctx, "Latest")
	require.NoError(t, err)

	require.NoError(t, sh.Run(ctx))
	assert.Contains(t, out.String(), "resumed case Latest")
	assert.NotContains(t, out.String(), "Inputs", "commands after quit must not run")
}

func TestUnknownCommand(t *testing.T) {
	sh, _ := setupShell(t, "")
	assert.ErrorContains(t, sh.Execute(context.Background(), "frobnicate"), "unknown command")
	assert.NoError(t, sh.Execute(context.Background(), "   "))
}

type downServer struct{}

func (downServer) Version(context.Context) (server.VersionResponse, error) {
	return server.VersionResponse{}, errors.New("connection refused")
}

func TestStatusReportsServer(t *testing.T) {
	sh, out := setupShell(t, "")

	run(t, sh, "status")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "server"))
	assert.Contains(t, lines[2], "test")
	assert.Contains(t, lines[2], "year 2026")

	out.Reset()
	sh.server = downServer{}
	run(t, sh, "status")
	assert.Contains(t, out.String(), "unreachable")
}
