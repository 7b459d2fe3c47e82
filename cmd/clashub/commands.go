package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zhousiru/clashub/internal/bootstrap"
	"github.com/Zhousiru/clashub/internal/migrations"
	"github.com/Zhousiru/clashub/internal/repository"
	"github.com/Zhousiru/clashub/internal/support/logging"
)

func init() {
	// Migrate
	var migrateCmd = &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "SQLite schema migration management",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if driver := strings.ToLower(cfg.Store.Driver); driver != "" && driver != "sqlite" {
				return fmt.Errorf("migrate only applies to the sqlite driver, got %q", cfg.Store.Driver)
			}
			db, err := bootstrap.OpenSQLite(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Using DB path: %s\n", cfg.Store.Path)

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}
			switch action {
			case "up":
				return migrations.Up(db)
			case "down":
				return migrations.Down(db)
			case "status":
				return migrations.Status(db)
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
	rootCmd.AddCommand(migrateCmd)

	// Token
	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Access token management",
	}
	tokenCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether an access token has been set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			kvStore, closer, err := bootstrap.OpenKV(cfg.Store, logging.Discard())
			if err != nil {
				return err
			}
			defer closer.Close()

			configured, err := repository.NewKVStore(kvStore).Tokens().Has(context.Background())
			if err != nil {
				return err
			}
			if configured {
				fmt.Fprintln(cmd.OutOrStdout(), "access token: configured")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "access token: not set (first visit to /login will ask for one)")
			}
			return nil
		},
	})
	rootCmd.AddCommand(tokenCmd)
}
