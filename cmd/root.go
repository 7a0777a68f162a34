package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/wordspark/internal/config"
	"github.com/abhisek/wordspark/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "wordspark",
	Short: "Picture-word practice for young learners",
	Long:  "WordSpark runs short practice rounds in the terminal: match words to pictures,\nrecognize them, spell them out or say them aloud.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, nil)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the database file (overrides WORDSPARK_DB env var)")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: bolt, sqlite or memory (overrides WORDSPARK_BACKEND)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig loads .env and the environment config, then applies the
// persistent flags on top.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return config.Config{}, err
	}
	cfg := config.ConfigFromEnv()
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		cfg.Backend = b
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.LogLevel = l
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then WORDSPARK_DB env var, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
