package logging

import (
	"encoding/hex"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "QUEC_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks QUEC_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the QUEC_LOG_LEVEL
// environment variable. This is the recommended way to initialize logging
// for CLI commands that want silent mode by default.
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogConnection logs a BLE connection lifecycle event.
func LogConnection(address string, event string) {
	Info("BLE connection event",
		zap.String("address", address),
		zap.String("event", event),
	)
}

// LogAdvertisement logs a parsed manufacturer-data advertisement.
func LogAdvertisement(address, productKey, deviceKey string, flags uint16) {
	Debug("advertisement parsed",
		zap.String("address", address),
		zap.String("product_key", productKey),
		zap.String("device_key", deviceKey),
		zap.Uint16("flags", flags),
	)
}

// LogFrame logs one encoded or decoded TTLV frame.
func LogFrame(direction string, cmdName string, cmd uint16, packetID uint16, payloadFieldCount int) {
	Debug("TTLV frame",
		zap.String("direction", direction),
		zap.String("cmd_name", cmdName),
		zap.Uint16("cmd", cmd),
		zap.Uint16("packet_id", packetID),
		zap.Int("field_count", payloadFieldCount),
	)
}

// LogGarble logs the byte-stuffing transformation applied to one outbound
// frame, only at debug level since the hex dumps are verbose.
func LogGarble(before, after []byte) {
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		return
	}
	Debug("byte-stuffing applied",
		zap.Int("before_len", len(before)),
		zap.Int("after_len", len(after)),
		zap.String("before_hex", hexDump(before)),
		zap.String("after_hex", hexDump(after)),
	)
}

// LogHandshake logs a session handshake state transition.
func LogHandshake(fromState, toState, trigger string) {
	Info("handshake state transition",
		zap.String("from", fromState),
		zap.String("to", toState),
		zap.String("trigger", trigger),
	)
}

// LogDecodeError logs a decoder error event with its kind and the
// raw bytes that triggered it, at warn level.
func LogDecodeError(kind string, message string, raw []byte) {
	Warn("decode error",
		zap.String("kind", kind),
		zap.String("message", message),
		zap.String("hex", hexDump(raw)),
	)
}

// LogRawBytes logs raw bytes (useful for debugging protocol issues).
func LogRawBytes(label string, data []byte) {
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

func hexDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if len(data) > 256 {
		return hex.EncodeToString(data[:256]) + "..."
	}
	return hex.EncodeToString(data)
}

func asciiDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if len(data) > 256 {
		data = data[:256]
	}

	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}
	return string(result)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
