package bletransport

import "tinygo.org/x/bluetooth"

var (
	// ServiceUUID is the GATT service QUEC devices expose their TTLV
	// characteristic under.
	ServiceUUID, _ = bluetooth.ParseUUID("00000180-A000-1000-8000-00805F9B34FB")

	// CharacteristicUUID is written to send frames and notified on to
	// receive them; the same characteristic serves both directions.
	CharacteristicUUID, _ = bluetooth.ParseUUID("00009C40-0000-1000-8000-00805F9B34FB")
)

// ManufacturerID is the company id QUEC advertisements carry their
// manufacturer data under; see internal/advertisement.
const ManufacturerID uint16 = 0x5551
