package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/sweepr/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without contacting Plex.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with tokens masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configShowCmd)
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	if err := config.Init(path, configInitForce); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s\n", path)
	fmt.Fprintln(stdout, "Set PLEX_TOKEN (and PLEX_URL if Plex is not on localhost) before running sweepr.")
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	explicit := configPath
	if len(args) > 0 {
		explicit = args[0]
	}
	loc, err := config.Resolve(explicit)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Validating %s...\n\n", loc)

	cfg, err := config.Load(loc.Path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(configErr)
			return errors.New("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)
	fmt.Fprintln(stdout, "\nConfiguration valid!")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loc, err := resolveConfig()
	if err != nil {
		return err
	}
	cfg, err := config.Load(loc.Path)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "# %s\n", loc)
	return cfg.Encode(stdout)
}

func printConfigErrors(e *config.ConfigError) {
	fmt.Fprintf(stdout, "%d problem(s):\n", len(e.Problems()))
	for _, p := range e.Problems() {
		fmt.Fprintf(stdout, "  - %s\n", p)
	}
	fmt.Fprintln(stdout)
}

func printConfigSummary(cfg *config.Config) {
	fmt.Fprintln(stdout, "Configuration Summary:")
	fmt.Fprintf(stdout, "  Plex:       %s (timeout %s, %g req/s, %d retries)\n",
		cfg.Plex.URL, cfg.Plex.Timeout, cfg.Plex.RequestsPerSecond, cfg.Plex.Retries)
	fmt.Fprintf(stdout, "  plex.tv:    %s\n", cfg.PlexTV.URL)
	if cfg.Cache.Enabled {
		fmt.Fprintf(stdout, "  Cache:      %s (ttl %s)\n", cfg.Cache.Path, cfg.Cache.TTL)
	} else {
		fmt.Fprintln(stdout, "  Cache:      disabled")
	}
	fmt.Fprintf(stdout, "  Evaluator:  %s (concurrency %d)\n", cfg.Evaluator.Application, cfg.Evaluator.Concurrency)
	fmt.Fprintf(stdout, "  Logging:    %s/%s\n", cfg.Log.Level, cfg.Log.Format)
}
