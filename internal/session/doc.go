// Package session drives the onboarding handshake state machine: random
// challenge, login hash, Wi-Fi pairing, and the alternate direct-account
// auth path. It produces ttlv.CommandFrame values for the caller to encode
// and send, and consumes decoded ttlv.CommandFrame values as responses arrive. It
// never touches a transport or the wire bytes directly.
package session
