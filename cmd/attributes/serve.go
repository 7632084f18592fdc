package main

import (
	"fmt"
	"os"

	"github.com/nebari-dev/attributes/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

// @title Attributes API
// @version 1.0
// @description Typed, translatable attribute content and its administration.
// @host localhost:8470
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the attributes server",
	Long: `Start the attributes HTTP server.

Environment variables:
  ATTRIBUTES_SERVER_PORT         Server port (default: 8470)
  ATTRIBUTES_DATABASE_DRIVER     Database driver: sqlite, postgres
  ATTRIBUTES_DATABASE_DSN        Database connection string
  ATTRIBUTES_MESSENGER_TYPE      Status message store: memory, valkey
  ATTRIBUTES_AUTH_JWT_SECRET     JWT signing secret
  ADMIN_USERNAME                 Bootstrap admin username
  ADMIN_PASSWORD                 Bootstrap admin password`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := server.Config{
		Port:       servePort,
		ConfigFile: configFile,
		Version:    Version,
	}

	if err := server.RunWithSignalHandling(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
