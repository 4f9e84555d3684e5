// Quecble is an onboarding utility for QUEC BLE IoT devices.
//
// It scans for devices advertising the QUEC manufacturer id, lets the user
// pick one, and pairs it onto a WiFi network over the TTLV/BLE protocol.
//
// Usage:
//
//	quecble [command] [flags]
//
// Running without arguments launches the interactive onboarding wizard.
// See 'quecble --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quecble/quecble/internal/logging"
	"github.com/quecble/quecble/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quecble",
	Short: "QUEC BLE Device Onboarding Utility",
	Long: `A standalone utility for onboarding QUEC BLE IoT devices.

Scans for devices advertising manufacturer id 0x5551, lets you pick one
from a list, and pairs it onto a WiFi network.

If no command is specified, the interactive wizard will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quecble %s\n", version.Full())
	},
}
