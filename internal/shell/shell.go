// Package shell is a line-oriented interactive front end over a session.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/outright-forecast/internal/compare"
	"github.com/iwvelando/outright-forecast/internal/export"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
	"github.com/iwvelando/outright-forecast/internal/server"
	"github.com/iwvelando/outright-forecast/internal/session"
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/datetime"
	"github.com/iwvelando/outright-forecast/pkg/output"
	"github.com/iwvelando/outright-forecast/pkg/validation"
	"go.uber.org/zap"
)

const prompt = "outright> "

// errQuit ends Run without error.
var errQuit = errors.New("quit")

// ServerInfo reports the build and forecast year of the compute service.
type ServerInfo interface {
	Version(ctx context.Context) (server.VersionResponse, error)
}

// Options configures a Shell.
type Options struct {
	Store    session.CaseStore
	Compute  session.ComputeService
	Server   ServerInfo
	Schedule []string
	Logger   *zap.Logger
	In       io.Reader
	Out      io.Writer
	Now      func() time.Time
}

// Shell reads commands from In and writes rendered results to Out.
type Shell struct {
	session *session.Manager
	server  ServerInfo
	in      io.Reader
	out     io.Writer
	logger  *zap.Logger
	styles  styles
	now     func() time.Time

	lastCompare *compare.Comparison
}

// New creates a shell and the session it drives.
func New(opts Options) *Shell {
	s := &Shell{
		server: opts.Server,
		in:     opts.In,
		out:    opts.Out,
		logger: opts.Logger,
		now:    opts.Now,
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.styles = newStyles(s.out)
	s.session = session.New(session.Options{
		Store:    opts.Store,
		Compute:  opts.Compute,
		Notifier: s,
		Logger:   s.logger,
		Schedule: opts.Schedule,
	})
	return s
}

// Session returns the session driven by the shell.
func (s *Shell) Session() *session.Manager {
	return s.session
}

// Notify prints session warnings and state transitions.
func (s *Shell) Notify(e session.Event) {
	switch e.Kind {
	case session.Warning:
		fmt.Fprintln(s.out, s.styles.warning.Render("warning: "+e.Message))
	case session.StateChanged:
		fmt.Fprintln(s.out, s.styles.muted.Render(e.Message))
	}
}

// Run starts the session and executes commands until quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, s.styles.title.Render("Outright calculator")+s.styles.muted.Render("  (type help for commands)"))
	if err := s.session.Start(ctx); err != nil {
		s.printError(err)
	} else if id, ok := s.session.State().Active(); ok {
		fmt.Fprintf(s.out, "%s %s\n", s.styles.muted.Render("resumed case"), s.styles.active.Render(s.caseName(id)))
	}

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if err := s.Execute(ctx, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			s.printError(err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Execute runs a single command line.
func (s *Shell) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	s.logger.Debug("shell command",
		zap.String("op", "shell.Execute"),
		zap.String("command", cmd),
	)

	switch cmd {
	case "help", "?":
		s.printHelp()
		return nil
	case "quit", "exit":
		return errQuit
	case "show":
		s.printInputs()
		s.printSeries(s.session.Results())
		return nil
	case "status":
		s.printStatus(ctx)
		return nil
	case "set":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: set <effr|me|qe|ye|date> [value]")
		}
		return s.set(args[0], strings.Join(args[1:], ""))
	case "meeting":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: meeting <date> [value]")
		}
		if _, err := datetime.ParseMeetingDate(args[0]); err != nil {
			return err
		}
		return s.session.SetMeeting(args[0], strings.Join(args[1:], ""))
	case "up", "down":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <field>", cmd)
		}
		return s.adjust(args[0], cmd == "up")
	case "compute":
		rows, err := s.session.Compute(ctx)
		if err != nil {
			return err
		}
		s.printSeries(rows)
		return nil
	case "save":
		c, err := s.session.Create(ctx, restOf(line, fields[0]))
		if c != nil {
			fmt.Fprintf(s.out, "%s %s\n", s.styles.success.Render("saved"), s.styles.value.Render(c.Name))
		}
		return err
	case "load":
		if len(args) != 1 {
			return errors.New("usage: load <id|#n>")
		}
		id, err := s.resolveCase(args[0])
		if err != nil {
			return err
		}
		if _, err := s.session.Load(ctx, id); err != nil {
			return err
		}
		s.printInputs()
		s.printSeries(s.session.Results())
		return nil
	case "update":
		c, err := s.session.Update(ctx)
		if c != nil {
			fmt.Fprintf(s.out, "%s %s\n", s.styles.success.Render("updated"), s.styles.value.Render(c.Name))
			s.printSeries(s.session.Results())
		}
		return err
	case "delete":
		if len(args) != 1 {
			return errors.New("usage: delete <id|#n>")
		}
		id, err := s.resolveCase(args[0])
		if err != nil {
			return err
		}
		if err := s.session.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(s.out, s.styles.success.Render("deleted"))
		return nil
	case "reset":
		s.session.Reset()
		return nil
	case "list":
		if err := s.session.Refresh(ctx); err != nil {
			return err
		}
		s.printCases()
		return nil
	case "compare":
		return s.compare(ctx, args)
	case "export":
		if len(args) != 2 {
			return errors.New("usage: export csv|xlsx|pdf <path>")
		}
		return s.export(strings.ToLower(args[0]), args[1])
	default:
		return fmt.Errorf("unknown command %q (type help for commands)", cmd)
	}
}

// restOf returns line with its leading command word removed.
func restOf(line, cmd string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd))
}

// resolveField maps a command argument to a scenario field. Dates address
// meetings.
func resolveField(arg string) (string, error) {
	switch name := strings.ToLower(arg); name {
	case scenario.FieldEffr, scenario.FieldME, scenario.FieldQE, scenario.FieldYE:
		return name, nil
	}
	if _, err := datetime.ParseMeetingDate(arg); err == nil {
		return scenario.MeetingField(arg), nil
	}
	return "", fmt.Errorf("unknown field %q (effr, me, qe, ye or a meeting date)", arg)
}

func (s *Shell) set(arg, value string) error {
	field, err := resolveField(arg)
	if err != nil {
		return err
	}
	return s.session.Set(field, value)
}

func (s *Shell) adjust(arg string, up bool) error {
	field, err := resolveField(arg)
	if err != nil {
		return err
	}
	next, err := s.session.Adjust(field, up)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s = %s\n", arg, s.styles.value.Render(next))
	return nil
}

// resolveCase accepts a case id or a 1-based listing reference like #2.
func (s *Shell) resolveCase(ref string) (string, error) {
	if !strings.HasPrefix(ref, "#") {
		return ref, nil
	}
	n, err := strconv.Atoi(ref[1:])
	listing := s.session.Cases()
	if err != nil || n < 1 || n > len(listing) {
		return "", fmt.Errorf("no case %s in the listing (%d cases)", ref, len(listing))
	}
	return listing[n-1].ID, nil
}

func (s *Shell) caseName(id string) string {
	for _, c := range s.session.Cases() {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

func (s *Shell) compare(ctx context.Context, refs []string) error {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := s.resolveCase(ref)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	cmp, err := s.session.Compare(ctx, ids)
	if err != nil {
		return err
	}
	s.lastCompare = cmp
	output.PrettyComparison(s.out, cmp)
	return nil
}

func (s *Shell) export(kind, path string) (err error) {
	if err := validation.ValidateExportFormat(kind); err != nil {
		return err
	}

	var write func(io.Writer) error
	switch kind {
	case constants.ExportFormatCSV:
		rows := s.session.Results()
		if len(rows) == 0 {
			return errors.New("nothing to export: compute or load a case first")
		}
		write = func(w io.Writer) error { return output.CsvFormat(w, rows) }
	case constants.ExportFormatXLSX:
		rows := s.session.Results()
		if len(rows) == 0 {
			return errors.New("nothing to export: compute or load a case first")
		}
		name := "Working"
		if id, ok := s.session.State().Active(); ok {
			name = s.caseName(id)
		}
		sheets := []export.Sheet{{Name: name, Rows: metrics.Raw(rows)}}
		write = func(w io.Writer) error { return export.WriteWorkbook(w, sheets) }
	case constants.ExportFormatPDF:
		if s.lastCompare == nil {
			return errors.New("nothing to export: run compare first")
		}
		cmp := s.lastCompare
		write = func(w io.Writer) error { return export.WriteComparisonPDF(w, cmp, s.now()) }
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("export %s: %w", kind, err)
	}

	s.logger.Info("exported",
		zap.String("op", "shell.export"),
		zap.String("format", kind),
		zap.String("path", path),
	)
	fmt.Fprintf(s.out, "%s %s\n", s.styles.success.Render("wrote"), path)
	return nil
}

// announced reports whether the session already surfaced err as a warning.
func announced(err error) bool {
	return errors.Is(err, session.ErrNameRequired) ||
		errors.Is(err, session.ErrNoActiveCase) ||
		errors.Is(err, compare.ErrTooFewCases)
}

func (s *Shell) printError(err error) {
	if announced(err) {
		return
	}
	fmt.Fprintln(s.out, s.styles.err.Render("error: "+err.Error()))
}
