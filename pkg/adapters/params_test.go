package adapters

import (
	"strings"
	"testing"

	"github.com/iwvelando/outright-forecast/internal/scenario"
)

func TestInputToParams(t *testing.T) {
	in := scenario.Input{
		Effr: "5.25%",
		ME:   "10",
		QE:   "20bps",
		YE:   "0.3%",
		Meetings: map[string]string{
			"2026-03-18": "-25",
			"2026-01-28": "",
		},
	}

	params, err := InputToParams(in, 2026)
	if err != nil {
		t.Fatalf("InputToParams() error = %v", err)
	}

	if params.Year != 2026 {
		t.Errorf("Year = %d, expected 2026", params.Year)
	}
	if params.EffrPct != 5.25 {
		t.Errorf("EffrPct = %v, expected 5.25", params.EffrPct)
	}
	if params.MEPct != 0.1 || params.QEPct != 0.2 || params.YEPct != 0.3 {
		t.Errorf("period-end bumps = %v/%v/%v, expected 0.1/0.2/0.3", params.MEPct, params.QEPct, params.YEPct)
	}
	if len(params.Meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(params.Meetings))
	}
	if params.Meetings[0].ChangePct != 0 || params.Meetings[1].ChangePct != -0.25 {
		t.Errorf("meeting changes = %+v", params.Meetings)
	}
}

func TestInputToParamsDefaultsBlankEffr(t *testing.T) {
	params, err := InputToParams(scenario.Input{}, 2026)
	if err != nil {
		t.Fatalf("InputToParams() error = %v", err)
	}
	if params.EffrPct != 5.25 {
		t.Errorf("EffrPct = %v, expected default 5.25", params.EffrPct)
	}
}

func TestInputToParamsErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   scenario.Input
		message string
	}{
		{name: "Bad effr", input: scenario.Input{Effr: "abc%"}, message: "invalid percent value"},
		{name: "Bad month-end", input: scenario.Input{ME: "ten"}, message: "month-end"},
		{name: "Bad meeting key", input: scenario.Input{Meetings: map[string]string{"March": "1"}}, message: "invalid meeting date"},
		{name: "Bad meeting value", input: scenario.Input{Meetings: map[string]string{"2026-03-18": "x"}}, message: "meeting 2026-03-18"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InputToParams(tt.input, 2026)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("expected error containing %q, got %v", tt.message, err)
			}
		})
	}
}
