package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/aptkit/apt"
	"github.com/joshuapare/aptkit/engine/dpkg"
)

var (
	// Global flags
	rootDir     string
	configPath  string
	arch        string
	verbose     bool
	quiet       bool
	jsonOut     bool
	lockTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "aptq",
	Short: "Query the APT package cache",
	Long: `aptq reads the dpkg status database and the APT lists of a Debian
system and answers questions about its packages: what is installed, which
version would be installed, where each version comes from.

Configuration is read from --config (TOML, YAML or JSON), then APTKIT_*
environment variables, then flags.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Filesystem root of the system to inspect")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&arch, "arch", "", "Native architecture (default: the running one)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		DurationVar(&lockTimeout, "lock-timeout", apt.DefaultLockTimeout, "How long to wait for the cache lock")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges the config file, environment and flags.
func loadConfig() (dpkg.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv(dpkg.EnvConfig)
	}
	cfg, err := dpkg.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if rootDir != "" {
		cfg.Root = rootDir
	}
	if arch != "" {
		cfg.Architecture = arch
	}
	cfg.Logger = newLogger()
	return cfg, cfg.Validate()
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openCache builds a cache for the configured system. Callers must Close it.
func openCache() (*apt.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	printVerbose("Reading package databases under %s\n", cfg.Root)
	return apt.New(cfg.Opener(),
		apt.WithLogger(cfg.Logger),
		apt.WithLockTimeout(lockTimeout),
	), nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
