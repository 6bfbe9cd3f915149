// Package cmd contains the CLI commands for botctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/storage"
)

var (
	storageBackend string
	storagePath    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "botctl",
	Short: "botctl - approval bot administration",
	Long: `botctl inspects and maintains the approval bot's project store.

It operates directly on the storage files, so run it against the same
backend and path the bot is configured with.

Examples:
  # List all projects
  botctl projects list

  # Show one project in detail
  botctl projects show 3

  # Delete a project and its submissions
  botctl projects delete 3

  # Remove all completed projects
  botctl projects purge`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultPath := "data/projects.json"
	if envPath := os.Getenv("APPROVALBOT_DATA_PATH"); envPath != "" {
		defaultPath = envPath
	}

	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "json", "storage backend (json or sqlite)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "path", defaultPath, "storage file path")
}

// openBackend opens the configured storage backend.
func openBackend() (storage.Storage, error) {
	var backend storage.Storage
	switch storageBackend {
	case "json":
		backend = storage.NewJSONStorage(storagePath)
	case "sqlite":
		backend = storage.NewSQLiteStorage(storagePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want json or sqlite)", storageBackend)
	}
	if err := backend.Open(); err != nil {
		return nil, fmt.Errorf("open %s storage at %s: %w", storageBackend, storagePath, err)
	}
	return backend, nil
}
