package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
	"go.uber.org/zap"
)

var helpLines = [][2]string{
	{"show", "print inputs and the current series"},
	{"set <field> [value]", "set effr, me, qe, ye or a meeting date"},
	{"meeting <date> [value]", "set the rate change at a meeting"},
	{"up|down <field>", "step a field (effr 25bp, others 1bp)"},
	{"compute", "compute the series for the current inputs"},
	{"save <name>", "save the inputs as a new case"},
	{"load <id|#n>", "load a case for editing"},
	{"update", "save the inputs over the loaded case"},
	{"delete <id|#n>", "delete a case"},
	{"reset", "restore default inputs and unload"},
	{"list", "list saved cases"},
	{"compare <id|#n>...", "compare two or more cases"},
	{"export csv|xlsx|pdf <path>", "write the series or last comparison"},
	{"status", "show the loaded case"},
	{"quit", "leave the shell"},
}

func (s *Shell) printHelp() {
	for _, line := range helpLines {
		fmt.Fprintf(s.out, "  %-28s %s\n", line[0], s.styles.muted.Render(line[1]))
	}
}

func (s *Shell) printStatus(ctx context.Context) {
	state := s.session.State()
	if id, ok := state.Active(); ok {
		fmt.Fprintf(s.out, "%s %s %s\n",
			s.styles.label.Render("loaded"),
			s.styles.active.Render(s.caseName(id)),
			s.styles.muted.Render(id))
	} else {
		fmt.Fprintf(s.out, "%s %s\n", s.styles.label.Render("loaded"), s.styles.muted.Render("none"))
	}
	fmt.Fprintf(s.out, "%s %d\n", s.styles.label.Render("saved cases"), len(s.session.Cases()))
	if s.server == nil {
		return
	}
	info, err := s.server.Version(ctx)
	if err != nil {
		s.logger.Warn("failed to query server version", zap.String("op", "shell.printStatus"), zap.Error(err))
		fmt.Fprintf(s.out, "%s %s\n", s.styles.label.Render("server"), s.styles.muted.Render("unreachable"))
		return
	}
	fmt.Fprintf(s.out, "%s %s %s\n",
		s.styles.label.Render("server"),
		info.Version,
		s.styles.muted.Render(fmt.Sprintf("year %d", info.Year)))
}

func (s *Shell) printInputs() {
	in := s.session.Inputs()
	fmt.Fprintln(s.out, s.styles.header.Render("Inputs"))
	rows := [][2]string{
		{"effr", in.Effr},
		{"me", in.ME},
		{"qe", in.QE},
		{"ye", in.YE},
	}
	for _, date := range in.MeetingDates() {
		v, _ := in.Get(scenario.MeetingField(date))
		rows = append(rows, [2]string{date, v})
	}
	for _, row := range rows {
		fmt.Fprintf(s.out, "  %s%s\n", s.styles.label.Render(row[0]), s.styles.value.Render(row[1]))
	}
}

func (s *Shell) printSeries(rows []metrics.ResultRow) {
	if len(rows) == 0 {
		fmt.Fprintln(s.out, s.styles.muted.Render("no results"))
		return
	}
	header := fmt.Sprintf("%-10s %10s %10s %10s", "Month", "Rate (%)", "Outright", "1M Spread")
	fmt.Fprintln(s.out, s.styles.header.Render(header))
	fmt.Fprintln(s.out, s.styles.muted.Render(strings.Repeat("─", len([]rune(header)))))
	for _, row := range metrics.Display(rows) {
		fmt.Fprintf(s.out, "%-10s %10s %10s %10s\n", row.Month, row.Rate, row.Outright, row.Spread)
	}
}

func (s *Shell) printCases() {
	listing := s.session.Cases()
	if len(listing) == 0 {
		fmt.Fprintln(s.out, s.styles.muted.Render("no saved cases"))
		return
	}
	state := s.session.State()
	for i, c := range listing {
		marker := " "
		name := s.styles.value.Render(c.Name)
		if state.IsActive(c.ID) {
			marker = "*"
			name = s.styles.active.Render(c.Name)
		}
		fmt.Fprintf(s.out, "%s #%-3d %s  %s\n", marker, i+1, name,
			s.styles.muted.Render(c.Created.Local().Format("2006-01-02 15:04")+"  "+c.ID))
	}
}
