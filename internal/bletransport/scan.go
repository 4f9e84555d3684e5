package bletransport

import (
	"context"
	"sync"

	"tinygo.org/x/bluetooth"

	"github.com/quecble/quecble/internal/advertisement"
)

// FoundDevice pairs a parsed descriptor with the address needed to connect.
type FoundDevice struct {
	Address    bluetooth.Address
	Descriptor advertisement.DeviceDescriptor
}

// Scan runs a BLE scan until ctx is done, reporting each device (once per
// address, from its first advertisement) whose advertisement carries
// ManufacturerID data and parses successfully. Advertisements
// that fail to parse (wrong header, too short) are silently skipped; they
// are not QUEC devices.
func Scan(ctx context.Context) ([]FoundDevice, error) {
	if err := defaultAdapter.Enable(); err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		found   []FoundDevice
		seen    = map[string]bool{}
	)

	handler := func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		var data []byte
		for _, elem := range result.ManufacturerData() {
			if elem.CompanyID == ManufacturerID {
				data = elem.Data
				break
			}
		}
		if data == nil {
			return
		}
		desc, err := advertisement.Parse(data, result.Address.String(), result.LocalName())
		if err != nil {
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if seen[result.Address.String()] {
			return
		}
		seen[result.Address.String()] = true
		found = append(found, FoundDevice{Address: result.Address, Descriptor: desc})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- defaultAdapter.Scan(handler)
	}()

	<-ctx.Done()
	if err := defaultAdapter.StopScan(); err != nil {
		return nil, err
	}
	<-errCh

	mu.Lock()
	defer mu.Unlock()
	return found, nil
}
