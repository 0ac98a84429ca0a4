package main

//	@title						TheBoolean API
//	@version					0.1.0
//	@description				Theme, site configuration and content API for TheBoolean.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: "Bearer {token}"

import (
	"os"

	"github.com/spf13/cobra"
	_ "github.com/thebooleanin/techstory-weaver/api/swagger"
	"github.com/thebooleanin/techstory-weaver/internal/version"
)

var (
	flagConfig    string
	flagEphemeral bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "theboolean",
		Short:         "TheBoolean site server",
		Long:          `Serves the TheBoolean site API, dashboard and theme stylesheet.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to configuration file")
	root.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "keep all data in memory; nothing survives a restart")

	root.AddCommand(
		newServeCmd(),
		newVersionCmd(),
		newThemeCmd(),
		newBackupCmd(),
		newRestoreCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
