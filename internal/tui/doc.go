// Package tui is the onboarding wizard: scan for QUEC devices over BLE,
// let the user pick one, then collect WiFi credentials and pair it.
//
// It is a deliberately narrow slice of a multi-screen wizard: two
// screens (scan, pair) rather than a full configuration dashboard, with
// pairing progress and the final success/failure result folded into the
// pair screen's own state instead of separate screens, reusing the same
// Screen/key.Binding/styles.go conventions a larger wizard would use.
package tui
