package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zhousiru/clashub/internal/config"
)

// Build info - injected via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "clashub",
	Short:        "Clashub subscription console",
	Long:         `Clashub keeps Clash proxy providers, config snippets and fetch relays behind a single access token.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// fail fast on a broken config file
		if _, err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml or /etc/clashub/config.yaml)")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clashub %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	})
}

func loadConfig() (*config.Config, error) {
	return config.LoadFrom(configPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
