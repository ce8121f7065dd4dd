package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"healthreport/internal/config"
	"healthreport/internal/logging"
	"healthreport/internal/pipeline"
)

const defaultConfigPath = "healthreport.yaml"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("healthreport", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (yaml or json)")
	envFile := fs.String("env-file", ".env", "optional dotenv file with secrets")
	input := fs.String("input", "", "override input.path")
	output := fs.String("output", "", "override output.path")
	writeDefault := fs.String("write-default-config", "", "write the default config to this path (yaml or .json) and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *writeDefault != "" {
		if err := config.Save(*writeDefault, config.DefaultConfig()); err != nil {
			fmt.Fprintf(os.Stderr, "healthreport: write default config: %v\n", err)
			return 1
		}
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "healthreport: config: %v\n", err)
		return 1
	}
	if err := config.ApplyEnv(cfg, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "healthreport: %v\n", err)
		return 1
	}
	if *input != "" {
		cfg.Input.Path = *input
	}
	if *output != "" {
		cfg.Output.Path = *output
	}

	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := pipeline.FromConfig(cfg, logger).Run(ctx)
	if err != nil {
		return 1
	}
	logger.Info("analysis report generated and saved",
		"path", config.ResolvePath(cfg.Output.Path),
		"readings", report.TotalReadings,
		"run_id", report.RunID,
	)
	return 0
}

// loadConfig falls back to defaults only when no path was given and the
// default file is absent.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadOrDefault(defaultConfigPath)
	}
	return config.Load(path)
}
