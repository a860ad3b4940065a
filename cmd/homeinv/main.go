// Command homeinv serves and maintains a household inventory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vbonduro/homeinv/internal/config"
)

var (
	v   = viper.New()
	cur *app
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeApp(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "homeinv",
	Short: "Household inventory of rooms, containers and the items inside them",
	Long: `homeinv keeps track of where things are stored: rooms hold containers,
containers may hold sub containers, which may hold third containers.
Items sit anywhere in that hierarchy.

Settings come from flags, then the environment (DB_PATH, PHOTO_LOCAL_PATH,
LOG_LEVEL, LOG_FORMAT,
LOG_FILE, LISTEN_ADDR), then config.yaml in $HOMEINV_CONFIG_DIR.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "path to the sqlite database")
	flags.String("photos", "", "directory holding item photos")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "json or text")
	flags.String("log-file", "", "also append logs to this file")

	mustBind(config.KeyDBPath, flags.Lookup("db"))
	mustBind(config.KeyPhotoPath, flags.Lookup("photos"))
	mustBind(config.KeyLogLevel, flags.Lookup("log-level"))
	mustBind(config.KeyLogFormat, flags.Lookup("log-format"))
	mustBind(config.KeyLogFile, flags.Lookup("log-file"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(expiringCmd)
}

// initApp loads the configuration and wires the application for the
// command about to run.
func initApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	cur = a
	return nil
}

func closeApp() error {
	if cur == nil {
		return nil
	}
	err := cur.Close()
	cur = nil
	return err
}
