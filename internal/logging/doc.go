// Package logging provides structured logging for quecble.
//
// This package wraps zap logger with convenience functions for common
// logging patterns used throughout the codec, session, and transport
// packages. It provides both general logging functions and specialized
// functions for protocol-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: frame parsing detail, hex dumps, byte-stuffing transforms
//   - Info: normal operations (connections, handshake transitions)
//   - Warn: non-fatal issues (decode errors, connection drops)
//   - Error: fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("BLE connection event",
//	    zap.String("address", "AA:BB:CC:DD:EE:FF"),
//	    zap.String("event", "connected"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogAdvertisement(address, productKey, deviceKey, flags)
//	logging.LogFrame("outbound", "Random", 0x7032, packetID, 0)
//	logging.LogGarble(before, after)
//	logging.LogHandshake("AwaitRandom", "AwaitLogin", "RandomResp")
//	logging.LogDecodeError("CrcMismatch", "checksum mismatch", raw)
//
// # Configuration
//
// Initialize logging at process startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
