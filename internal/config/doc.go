// Package config provides local device metadata management for quecble.
//
// This package manages a YAML-based configuration file that stores
// locally-known metadata for QUEC devices, including nicknames, last-seen
// addresses, and application preferences. The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/quecble/config.yaml or $HOME/.config/quecble/config.yaml
//   - macOS: $HOME/.config/quecble/config.yaml
//   - Windows: %LOCALAPPDATA%\quecble\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores the binding_key secret used for the
// session login handshake, nor WiFi passwords. These are always supplied
// out-of-band or prompted from the user when needed.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetDeviceNickname("deadbeef", "Living Room Sensor")
//	registry.UpdateDeviceLastSeen("deadbeef", "AA:BB:CC:DD:EE:FF", "abcd", 0x01)
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
