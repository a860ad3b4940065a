package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/homeinv/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Inspect and upgrade the database schema",
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := db.SchemaVersion(cur.database)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
		return nil
	},
}

// Opening the database already upgrades legacy photo rows; this reruns the
// upgrade for databases written by older clients since.
var migratePhotosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Convert single photo items to photo lists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := db.UpgradePhotoURIs(cmd.Context(), cur.database)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "upgraded %d items\n", n)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migratePhotosCmd)
}
