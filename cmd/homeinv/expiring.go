package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var expiringJSON bool

var expiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "List items whose reminder window is open",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := cur.items.ListExpiring(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if expiringJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		if len(items) == 0 {
			fmt.Fprintln(out, "Nothing is about to expire")
			return nil
		}
		for _, item := range items {
			expires := time.UnixMilli(*item.ExpirationDate).Format(time.DateOnly)
			fmt.Fprintf(out, "%s\t%s\t%s/%s\n", expires, item.Name, item.Room, item.Container)
		}
		return nil
	},
}

func init() {
	expiringCmd.Flags().BoolVar(&expiringJSON, "json", false, "print items as JSON")
}
