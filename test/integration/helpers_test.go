package integration

import (
	"testing"

	"github.com/iwvelando/outright-forecast/internal/config"
	"github.com/iwvelando/outright-forecast/internal/scenario"
)

// sessionDefaults returns the reset inputs for the test configuration's
// meeting schedule.
func sessionDefaults(t *testing.T) scenario.Input {
	t.Helper()
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return scenario.Default(conf.Schedule())
}
