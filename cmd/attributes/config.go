package main

import (
	"context"
	"fmt"

	"github.com/nebari-dev/attributes/internal/audit"
	"github.com/nebari-dev/attributes/internal/configsync"
	"github.com/spf13/cobra"
)

var (
	configDir    string
	configFormat string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Export and import attribute types",
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every attribute type to attribute_type.<id>.<format>",
	Args:  cobra.NoArgs,
	RunE:  runConfigExport,
}

var configImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Create or update attribute types from exported files",
	Long: `Read every attribute_type.<id>.yaml, .yml or .toml file below --dir
and create or update the matching attribute types.`,
	Args: cobra.NoArgs,
	RunE: runConfigImport,
}

func init() {
	configCmd.PersistentFlags().StringVarP(&configDir, "dir", "d", "./config", "Configuration directory")
	configExportCmd.Flags().StringVarP(&configFormat, "format", "f", configsync.FormatYAML, "File format: yaml or toml")

	configCmd.AddCommand(configExportCmd)
	configCmd.AddCommand(configImportCmd)
}

func runConfigExport(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	paths, err := configsync.Export(context.Background(), app.Forms.Types, configDir, configFormat)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func runConfigImport(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := configsync.Import(context.Background(), app.Forms.Types, configDir, 0)
	if err != nil {
		return err
	}
	audit.LogAction(app.DB, 0, audit.ActionImportConfig, "config:"+configDir, result)

	fmt.Fprintf(cmd.OutOrStdout(), "Created %d and updated %d attribute types\n", len(result.Created), len(result.Updated))
	return nil
}
