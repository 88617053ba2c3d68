// Arcticspa is a command line client for Arctic Spa hot tub controllers.
//
// It talks to controllers directly over the local network: UDP discovery
// of controllers on a subnet, live status and water chemistry readout,
// pack information and settings, equipment commands (temperature, pumps,
// lights, ...), and a live terminal dashboard.
//
// Usage:
//
//	arcticspa [command] [flags]
//
// Controllers are addressed with --host, with --spa <name> from the saved
// registry, or via the registry's default spa. See 'arcticspa --help' for
// available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/poolhouse/arcticspa/internal/logging"
	"github.com/poolhouse/arcticspa/internal/version"
	"github.com/poolhouse/arcticspa/protocol"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	hostFlag string
	spaFlag  string
	portFlag int
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "arcticspa",
	Short: "Arctic Spa Controller Client",
	Long: `A command line client for Arctic Spa hot tub controllers.

Talks to controllers directly over the local network: discovery, live
status, pack information, settings, equipment commands, and a live
dashboard. No cloud account is involved.

Controllers are addressed with --host, with --spa <name> from the saved
registry, or via the registry's default spa. Run 'arcticspa discover' to
find controllers on your network.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent unless --log-level or ARCTICSPA_LOG_LEVEL asks for output
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Controller IP address (skips the registry)")
	rootCmd.PersistentFlags().StringVar(&spaFlag, "spa", "", "Registry name of the spa to talk to")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", protocol.Port, "Controller TCP port")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arcticspa %s (commit: %s)\n", version.Version, version.Commit)
	},
}
