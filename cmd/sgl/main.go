// Command sgl is the operator CLI for the SGL tracker. It works against the
// same record store as the API server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chipchip/sgl-tracker/internal/app"
	"github.com/chipchip/sgl-tracker/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	c := &cli{}
	defer c.close()
	return c.rootCmd().Execute()
}

// cli carries the state shared by every subcommand
type cli struct {
	verbose bool
	app     *app.App
	owned   bool // app was built here and must be closed
}

// newRootCmd builds the command tree around an existing application
func newRootCmd(application *app.App) *cobra.Command {
	return (&cli{app: application}).rootCmd()
}

// rootCmd builds the command tree. Without an application one is opened from
// the environment before the command runs; close releases it.
func (c *cli) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sgl",
		Short: "SGL tracker operator CLI",
		Long: `sgl manages the super group leader pipeline from the terminal.

It reads the same STORE_DRIVER / DATABASE_URL settings as the API
server, so imports, exports and check-ins land in the shared record store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.app != nil {
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			level := cfg.Server.LogLevel
			if c.verbose {
				level = "debug"
			} else if level == "info" {
				level = "warn"
			}
			logger := app.NewLogger(level, cmd.ErrOrStderr())

			c.app, err = app.New(cfg, logger, nil)
			if err != nil {
				return err
			}
			c.owned = true
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		c.importCmd(),
		c.exportCmd(),
		c.dashboardCmd(),
		c.cohortsCmd(),
		c.weeksCmd(),
		c.checkInCmd(),
		c.checkInsCmd(),
		c.followUpsCmd(),
		c.promoteCmd(),
		c.seedCmd(),
	)

	return rootCmd
}

// close releases an application opened by the pre-run hook. It runs after
// Execute returns, so failed commands are covered too.
func (c *cli) close() {
	if !c.owned || c.app == nil {
		return
	}
	if err := c.app.Close(); err != nil {
		c.app.Logger.WithError(err).Warn("Failed to close record store")
	}
	c.owned = false
}

func (c *cli) logger() *logrus.Logger {
	return c.app.Logger
}

// printJSON writes v indented, for piping into jq
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
