// Package bletransport implements transport.Transport over a real BLE
// adapter (tinygo.org/x/bluetooth). It is the only package in this module
// that imports a hardware-facing BLE library; the codec, session, and
// transport packages stay free of that dependency.
package bletransport
