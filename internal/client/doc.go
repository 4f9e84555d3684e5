// Package client orchestrates a single device connection: it owns the
// transport, feeds inbound chunks through a ttlv.Decoder, drives a
// session.Session through the handshake, and exposes a small synchronous
// API (Authenticate, Pair) on top of the underlying event loop goroutine.
package client
