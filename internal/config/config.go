// Package config defines the client configuration and the functions for
// loading and validating it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/outright-forecast/internal/logging"
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for the outright calculator client.
type Configuration struct {
	Server   ServerConfig   `mapstructure:"server"`
	Year     int            `mapstructure:"year"`
	Meetings []string       `mapstructure:"meetings"`
	Logging  logging.Config `mapstructure:"logging"`
	Output   OutputConfig   `mapstructure:"output"`
}

// ServerConfig locates the compute service and case store.
type ServerConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format"` // pretty, csv
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.baseURL", constants.DefaultBaseURL)
	v.SetDefault("server.timeout", time.Duration(constants.DefaultClientTimeoutSeconds)*time.Second)
	v.SetDefault("year", constants.DefaultForecastYear)
	v.SetDefault("meetings", constants.DefaultMeetingDates)
	// The shell shares the terminal with the log stream.
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
}

// LoadConfiguration loads the YAML configuration at configPath. A missing file
// yields the defaults. Values from the environment (OUTRIGHT_SERVER_BASEURL,
// OUTRIGHT_OUTPUT_FORMAT, ...) and a .env file in the working directory
// override the file.
func LoadConfiguration(configPath string) (*Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := configuration.check(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// check rejects settings the client cannot run with.
func (c *Configuration) check() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return errors.New("server.baseURL must not be empty")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	return validation.ValidateOutputFormat(c.Output.Format)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{Year: c.Year, Meetings: c.Meetings}
	warnings := validator.ValidateAll()
	if len(c.Meetings) == 0 {
		warnings = append(warnings, "No meetings scheduled - every month uses the base rate plus calendar deltas")
	}
	return warnings
}

// Schedule returns the meeting dates that parse, without duplicates, in
// configured order.
func (c *Configuration) Schedule() []string {
	schedule := make([]string, 0, len(c.Meetings))
	seen := make(map[string]bool, len(c.Meetings))
	for _, date := range c.Meetings {
		date = strings.TrimSpace(date)
		if seen[date] {
			continue
		}
		if _, err := validation.ValidateMeetingDate(date, c.Year); err != nil {
			continue
		}
		seen[date] = true
		schedule = append(schedule, date)
	}
	return schedule
}
