// Package ttlv implements the Tag-Type-Length-Value wire codec used by the
// QUEC BLE device family: the algebraic value model, the frame encoder, and
// the incremental stream decoder.
//
// The codec never performs I/O and never blocks; callers own the transport
// and feed raw bytes through Decoder.Feed.
package ttlv
