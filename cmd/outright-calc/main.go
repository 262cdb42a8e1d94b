package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/outright-forecast/internal/client"
	"github.com/iwvelando/outright-forecast/internal/compare"
	"github.com/iwvelando/outright-forecast/internal/config"
	"github.com/iwvelando/outright-forecast/internal/logging"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
	"github.com/iwvelando/outright-forecast/internal/shell"
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/output"
	"github.com/iwvelando/outright-forecast/pkg/validation"
	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] [command]

Commands:
  shell               interactive session (default)
  show [case-id]      print the series for a stored case, or for default inputs
  compare <id> <id>.. compare the stored results of two or more cases

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(conf.Server.BaseURL, conf.Server.Timeout, logger)
	schedule := conf.Schedule()

	command := "shell"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "shell":
		sh := shell.New(shell.Options{
			Store:    api,
			Compute:  api,
			Server:   api,
			Schedule: schedule,
			Logger:   logger,
		})
		err = sh.Run(ctx)
	case "show":
		err = show(ctx, api, schedule, args, outputFormat)
	case "compare":
		err = runCompare(ctx, api, args, outputFormat)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed",
			zap.String("op", "main"),
			zap.String("command", command),
			zap.Error(err),
		)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func show(ctx context.Context, api *client.Client, schedule []string, args []string, format string) error {
	var (
		title string
		rows  []metrics.ResultRow
	)
	switch len(args) {
	case 0:
		raw, err := api.Compute(ctx, scenario.Default(schedule))
		if err != nil {
			return err
		}
		title, rows = "default inputs", metrics.DeriveSeries(raw)
	case 1:
		c, err := api.Get(ctx, args[0])
		if err != nil {
			return err
		}
		title, rows = c.Name, c.Series()
	default:
		return fmt.Errorf("show takes at most one case id")
	}

	if format == constants.OutputFormatCSV {
		return output.CsvFormat(os.Stdout, rows)
	}
	output.PrettyFormat(os.Stdout, title, rows)
	return nil
}

func runCompare(ctx context.Context, api *client.Client, ids []string, format string) error {
	cmp, err := compare.Build(ctx, api, ids)
	if err != nil {
		return err
	}
	if format == constants.OutputFormatCSV {
		return output.CsvComparison(os.Stdout, cmp)
	}
	output.PrettyComparison(os.Stdout, cmp)
	return nil
}
