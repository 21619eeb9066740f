package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"evamed-backend/internal/config"
	"evamed-backend/internal/db"
	"evamed-backend/utilities"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var rootCmd = &cobra.Command{
	Use:           "evamed",
	Short:         "EvaMed psychometric evaluation backend",
	Long:          "EvaMed serves candidate questionnaires, scores them and manages evaluations for back-office staff.",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "evamed", version)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.xml", "Path to the XML configuration file")
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "Environment files loaded before the configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads env files, the XML config and env overrides. Only serve
// validates the whole document; maintenance commands need just the DB part.
func loadConfig(cmd *cobra.Command) (*config.APIConfig, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if err := config.LoadEnv(envFiles...); err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString("config")
	return config.LoadConfig(path)
}

// setupLogging installs the process logger. quiet drops the console output
// so commands that print JSON keep stdout clean.
func setupLogging(cfg *config.APIConfig, quiet bool) error {
	_, err := utilities.SetupLogging(utilities.LogOptions{
		Dir:        cfg.Logging.Dir,
		Level:      cfg.Logging.Level,
		Mode:       cfg.Logging.Mode,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		Quiet:      quiet,
	})
	return err
}

// openDB connects and, when DB/INITIALIZE is set, migrates the schema.
func openDB(cfg *config.APIConfig) (*gorm.DB, error) {
	gdb, err := db.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Initialize {
		if err := db.Migrate(gdb); err != nil {
			_ = db.Close(gdb)
			return nil, err
		}
	}
	return gdb, nil
}
