package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-storyform/internal/config"
	"github.com/goliatone/go-storyform/internal/logging"
)

var (
	// Global flags
	configPath string
	apiURL     string
	token      string
	logLevel   string

	settings config.Config
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "storyform-cli",
	Short: "Create user stories from the terminal",
	Long: `storyform-cli fills in the "new story" form against a GraphQL backend.

It loads categories, priorities, products and existing stories, prompts for
each field, shows stories with similar titles, and submits the new story.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (overrides config and "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "session token (overrides config and "+config.EnvToken+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(enumsCmd)
}

// loadSettings resolves configuration (flags over env over file over
// defaults) and builds the logger.
func loadSettings() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(apiURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(token); v != "" {
		cfg.Session.Token = v
	}
	if v := strings.TrimSpace(logLevel); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	built, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	settings = cfg
	logger = built
	logger.Debug("configuration loaded",
		zap.String("endpoint", cfg.Endpoint()),
		zap.Duration("timeout", cfg.Timeout),
		zap.Bool("authenticated", cfg.Session.Token != ""),
	)
	return nil
}
