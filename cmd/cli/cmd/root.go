// Package cmd provides the CLI commands for tariff-duty.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tariff-duty/internal/app"
	"tariff-duty/internal/config"
	"tariff-duty/internal/errors"
	"tariff-duty/internal/logging"
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
)

var (
	cfgFile      string
	verbose      bool
	catalogPath  string
	schedulePath string
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tariff-duty",
	Short: "Classify goods by tariff code and compute customs duties",
	Long: `tariff-duty searches a TNVED tariff-code catalog and computes import duty,
VAT and customs clearance fees from a rate schedule.

Examples:
  tariff-duty search --catalog tnved.json постельное бельё
  tariff-duty code --catalog tnved.json "6302 10 00 00"
  tariff-duty calc 6302100000 100000
  tariff-duty serve --config tariff.yaml`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON, YAML or TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog JSON file (overrides catalog.path)")
	rootCmd.PersistentFlags().StringVar(&schedulePath, "schedule", "", "HCL rate schedule (overrides duty.schedule_path)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", formatText, "output format (text, json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// settings returns the loaded configuration with flag overrides applied
func settings() *config.Config {
	cfg := *config.Get()
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if schedulePath != "" {
		cfg.Duty.SchedulePath = schedulePath
	}
	return &cfg
}

// loadApp builds the runtime; requireCatalog fails early when no catalog is configured
func loadApp(requireCatalog bool) (*app.App, error) {
	cfg := settings()
	if requireCatalog && cfg.Catalog.Path == "" {
		return nil, errors.Validation("catalog", "no catalog configured: pass --catalog or set catalog.path")
	}
	return app.New(cfg)
}

func checkFormat() error {
	if outputFormat != formatText && outputFormat != formatJSON {
		return errors.Validation("format", fmt.Sprintf("unsupported format %q (use text or json)", outputFormat))
	}
	return nil
}

func jsonOutput() bool {
	return outputFormat == formatJSON
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tariff-duty version %s\n", app.Version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, settings())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a default configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Default().Save(args[0]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", args[0])
		return nil
	},
}
