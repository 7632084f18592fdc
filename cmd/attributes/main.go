package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/nebari-dev/attributes/docs" // Load swagger docs
)

// Version is set via ldflags at build time
var Version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "attributes",
	Short: "Attributes - typed, translatable attribute content",
	Long:  `Attributes serves and administers attribute content grouped by attribute type.`,
	Example: `  # Start the server
  attributes serve

  # Create an administrator and let editors create colours
  attributes user create admin --admin
  attributes role grant authenticated "create color attribute"

  # Move attribute types between sites
  attributes config export --dir ./config --format yaml
  attributes config import --dir ./config`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./config.yaml or /etc/attributes/config.yaml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "server", Title: "Server Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
	)

	serveCmd.GroupID = "server"
	userCmd.GroupID = "admin"
	roleCmd.GroupID = "admin"
	permissionsCmd.GroupID = "admin"
	configCmd.GroupID = "admin"

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(permissionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
