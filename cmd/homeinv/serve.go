package main

import (
	"github.com/spf13/cobra"

	"github.com/vbonduro/homeinv/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and change feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cur.server().ListenAndServe(cmd.Context(), cur.cfg.ListenAddr)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "address to listen on, e.g. :8080")
	mustBind(config.KeyListenAddr, serveCmd.Flags().Lookup("listen"))
}
