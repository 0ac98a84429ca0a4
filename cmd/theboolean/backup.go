package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/thebooleanin/techstory-weaver/internal/backup"
	"github.com/thebooleanin/techstory-weaver/internal/server"
	"github.com/thebooleanin/techstory-weaver/internal/version"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the site database and config file",
		Args:  cobra.NoArgs,
		RunE:  runBackup,
	}
	cmd.Flags().StringP("output", "o", "", "archive path (default theboolean-backup-<timestamp>.tar.gz in the data dir)")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Extract a backup archive into the data directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	}
	cmd.Flags().String("target", "", "directory to restore into (default: directory of database.path)")
	cmd.Flags().Bool("force", false, "overwrite existing files")
	return cmd
}

func runBackup(cmd *cobra.Command, _ []string) error {
	v, err := server.LoadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	dbPath := v.GetString("database.path")

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		name := fmt.Sprintf("theboolean-backup-%s.tar.gz", time.Now().UTC().Format("20060102-150405"))
		output = filepath.Join(v.GetString("server.data_dir"), name)
	}

	m, err := backup.Backup(cmd.Context(), dbPath, v.ConfigFileUsed(), output, version.Short())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s (%d files)\n", output, len(m.Files))
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	v, err := server.LoadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	target, _ := cmd.Flags().GetString("target")
	if target == "" {
		target = filepath.Dir(v.GetString("database.path"))
	}
	force, _ := cmd.Flags().GetBool("force")

	m, err := backup.Restore(cmd.Context(), args[0], target, force)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "restored into %s\n", target)
	if m != nil {
		fmt.Fprintf(out, "archive created %s by version %s\n", m.CreatedAt.Format(time.RFC3339), m.AppVersion)
	}
	if filepath.Base(v.GetString("database.path")) != backup.DatabaseName {
		fmt.Fprintf(out, "note: set database.path to %s to use the restored database\n",
			filepath.Join(target, backup.DatabaseName))
	}
	return nil
}
