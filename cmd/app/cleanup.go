package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"evamed-backend/internal/db"
	"evamed-backend/internal/repository"
	"evamed-backend/internal/service"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete pending and in-progress evaluations that went stale",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, true); err != nil {
			return err
		}
		staleAfter := cfg.Cleanup.StaleAfter()
		if h, _ := cmd.Flags().GetInt("older-than"); h > 0 {
			staleAfter = time.Duration(h) * time.Hour
		}
		if staleAfter <= 0 {
			return fmt.Errorf("stale window must be positive")
		}

		gdb, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		n, err := service.NewCleanupService(repository.NewStore(gdb), staleAfter).PurgeStale(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d stale evaluations deleted (older than %s)\n", n, staleAfter)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().Int("older-than", 0, "Stale window in hours (defaults to CLEANUP/STALE_AFTER)")
}
