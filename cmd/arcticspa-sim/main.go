// Arcticspa-sim is a simulated Arctic Spa controller for development and
// testing.
//
// It speaks the controller's LAN protocol: a TCP listener answering status
// requests and applying equipment commands against in-memory spa state,
// plus an optional UDP responder so 'arcticspa discover' can find it.
//
// Usage:
//
//	arcticspa-sim serve [flags]
//
// See 'arcticspa-sim serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/poolhouse/arcticspa/internal/sim"
	"github.com/poolhouse/arcticspa/internal/version"
	"github.com/poolhouse/arcticspa/protocol"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcticspa-sim",
	Short: "Arctic Spa Controller Simulator",
	Long: `A simulated Arctic Spa controller.

The simulator listens on the controller's TCP port, answers status
requests with plausible spa state, applies equipment commands, and
optionally answers UDP discovery probes. Point the 'arcticspa' client at
it to develop and test without a physical spa.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host         string
	port         int
	logLevel     string
	pushInterval time.Duration
	noDiscovery  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulated controller",
	Long: `Start the simulated controller and block until interrupted.

By default the simulator binds the controller's standard TCP port on all
interfaces and answers UDP discovery probes, so 'arcticspa discover' finds
it like a real spa. Heartbeat frames are pushed periodically to connected
clients; --push-interval 0 disables them.`,
	Example: `  # Standard ports, discoverable on the LAN
  arcticspa-sim serve

  # Local-only on a high port, verbose
  arcticspa-sim serve --host 127.0.0.1 --port 50000 --log-level debug

  # No discovery responder, no heartbeats
  arcticspa-sim serve --no-discovery --push-interval 0`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Address to bind (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", protocol.Port, "TCP port to listen on")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().DurationVar(&pushInterval, "push-interval", 10*time.Second, "Heartbeat push interval (0 disables)")
	serveCmd.Flags().BoolVar(&noDiscovery, "no-discovery", false, "Do not answer UDP discovery probes")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &sim.Config{
		Host:         host,
		Port:         port,
		LogLevel:     logLevel,
		PushInterval: pushInterval,
		Discovery:    !noDiscovery,
	}

	s, err := sim.New(config)
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}

	return s.Run()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arcticspa-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
