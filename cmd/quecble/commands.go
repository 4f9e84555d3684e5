package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quecble/quecble/internal/bletransport"
	"github.com/quecble/quecble/internal/config"
	"github.com/quecble/quecble/internal/tui"
)

var scanTimeoutSeconds int

func init() {
	scanCmd.Flags().IntVar(&scanTimeoutSeconds, "timeout", 10, "Scan timeout in seconds")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(wizardCmd)
}

// scanCmd performs a one-shot, non-interactive BLE scan and prints results.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for QUEC devices over BLE",
	Long: `Scan for QUEC devices advertising manufacturer id 0x5551.

This command listens for BLE advertisements and prints every discovered
device with its address, product key, device key, and capability flags.`,
	Example: `  # Scan for 10 seconds (default)
  quecble scan

  # Quick 3-second scan
  quecble scan --timeout 3`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for QUEC devices (timeout: %ds)...\n\n", scanTimeoutSeconds)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(scanTimeoutSeconds)*time.Second)
	defer cancel()

	devices, err := bletransport.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the device is powered on and advertising")
		fmt.Println("  - Check that Bluetooth is enabled on this machine")
		fmt.Println("  - Try increasing --timeout for slower advertisement intervals")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))
	for i, dev := range devices {
		desc := dev.Descriptor
		fmt.Printf("%d. %s\n", i+1, desc.DeviceKey)
		fmt.Printf("   Address:      %s\n", dev.Address.String())
		fmt.Printf("   Product Key:  %s\n", desc.ProductKey)
		fmt.Printf("   Bound:        %v\n", desc.IsBound)
		fmt.Printf("   WiFi Set Up:  %v\n", desc.IsWifiConfigured)
		fmt.Println()
	}

	fmt.Println("Use 'quecble wizard' (or run with no arguments) to pair a device")
	return nil
}

// wizardCmd launches the interactive TUI onboarding wizard.
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch interactive onboarding wizard",
	Long: `Launch an interactive TUI wizard for device onboarding: scan, select,
and pair a QUEC device onto a WiFi network.`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("wizard requires an interactive terminal; use 'quecble scan' in scripts")
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load device registry: %w", err)
	}

	model := tui.NewAppModel(registry)
	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}

	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save device registry: %w", err)
	}
	return nil
}
