// Package cli implements the bitonic command-line interface.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Dilhara-Jayashan/bitonicSort/internal/config"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "bitonic"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Defaults(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Bitonic sorting network, run sequentially, on threads or across processes",
		Long:         `bitonic sorts files of 32-bit integers with a bitonic sorting network, either sequentially, on a shared-memory worker pool, or distributed over a group of ranks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(c.serialCommand())
	root.AddCommand(c.parallelCommand())
	root.AddCommand(c.distributedCommand())
	root.AddCommand(c.workerCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.genCommand())
	root.AddCommand(c.networkCommand())
	root.AddCommand(c.infoCommand())

	return root
}

// =============================================================================
// Flag Helpers
// =============================================================================

// intSetting returns the flag value if it was given, the configured value
// otherwise.
func intSetting(cmd *cobra.Command, name string, configured int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return configured
}

// stringSetting is intSetting for string flags.
func stringSetting(cmd *cobra.Command, name, configured string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return configured
}

// durationSetting is intSetting for duration flags.
func durationSetting(cmd *cobra.Command, name string, configured time.Duration) time.Duration {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetDuration(name)
		return v
	}
	return configured
}
