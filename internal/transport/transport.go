// Package transport defines the abstract channel the codec and session
// packages require from whatever carries bytes to and from a device. It
// has no BLE dependency itself; internal/bletransport provides a concrete
// implementation.
package transport

import "context"

// Transport is the thin contract a BLE (or any other) link must satisfy.
// Write sends one outbound chunk; Notifications yields inbound chunks in
// arrival order, one per notification. The codec and session packages only
// ever see this interface.
type Transport interface {
	Write(ctx context.Context, data []byte) error
	Notifications() <-chan []byte
	Close() error
}
