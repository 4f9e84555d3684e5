package bletransport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/quecble/quecble/internal/errs"
)

// silenceTimeout is how long the adapter tolerates a quiet characteristic
// before assuming the link is dead and tearing the connection down,
// mirroring the scale package's disconnect-on-silence monitor.
const silenceTimeout = 10 * time.Second

const (
	writeRetries    = 2
	writeRetryDelay = 1 * time.Second
)

var defaultAdapter = bluetooth.DefaultAdapter

// Adapter is a transport.Transport backed by a single BLE connection to one
// QUEC device. Write and the notification channel may be used concurrently
// by different goroutines; lastNotified is only ever touched from the
// notification callback and read by the monitor goroutine, so it is
// guarded by a mutex rather than left to chance.
type Adapter struct {
	address bluetooth.Address

	device        bluetooth.Device
	char          bluetooth.DeviceCharacteristic
	notifications chan []byte

	mu           sync.Mutex
	lastNotified time.Time
	connected    bool

	monitorCancel context.CancelFunc
}

// Connect dials address, discovers the TTLV service and characteristic,
// and subscribes to notifications. The returned Adapter is ready for Write
// and Notifications immediately.
func Connect(address bluetooth.Address) (*Adapter, error) {
	if err := defaultAdapter.Enable(); err != nil {
		return nil, errs.NewTransportError("failed to enable BLE adapter", err, false)
	}

	device, err := defaultAdapter.Connect(address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, errs.NewTransportError("failed to connect to device", err, true)
	}

	a := &Adapter{
		address:       address,
		device:        device,
		notifications: make(chan []byte, 32),
	}

	if err := a.setupCharacteristic(); err != nil {
		_ = device.Disconnect()
		return nil, err
	}

	if err := a.setupNotifications(); err != nil {
		_ = device.Disconnect()
		return nil, err
	}

	a.mu.Lock()
	a.lastNotified = time.Now()
	a.connected = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	a.monitorCancel = cancel
	go a.monitorSilence(ctx)

	return a, nil
}

func (a *Adapter) setupCharacteristic() error {
	services, err := a.device.DiscoverServices([]bluetooth.UUID{ServiceUUID})
	if err != nil {
		return errs.NewTransportError("failed to discover services", err, false)
	}
	if len(services) == 0 {
		return errs.NewTransportError("TTLV service not found", errors.New("no matching service"), false)
	}

	for _, service := range services {
		chars, err := service.DiscoverCharacteristics([]bluetooth.UUID{CharacteristicUUID})
		if err != nil {
			return errs.NewTransportError("failed to discover characteristics", err, false)
		}
		for _, char := range chars {
			if char.UUID() == CharacteristicUUID {
				a.char = char
				return nil
			}
		}
	}
	return errs.NewTransportError("TTLV characteristic not found", errors.New("no matching characteristic"), false)
}

func (a *Adapter) setupNotifications() error {
	err := a.char.EnableNotifications(a.handleNotification)
	if err != nil {
		return errs.NewTransportError("failed to enable notifications", err, false)
	}
	return nil
}

func (a *Adapter) handleNotification(buf []byte) {
	a.mu.Lock()
	a.lastNotified = time.Now()
	a.mu.Unlock()

	chunk := append([]byte(nil), buf...)
	select {
	case a.notifications <- chunk:
	default:
		// Consumer is behind; the channel's buffer already exceeds any
		// realistic MTU-bounded burst, so drop rather than block the
		// BLE stack's notification callback.
	}
}

func (a *Adapter) monitorSilence(ctx context.Context) {
	ticker := time.NewTicker(silenceTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.mu.Lock()
			quiet := time.Since(a.lastNotified) > silenceTimeout
			a.mu.Unlock()
			if quiet {
				_ = a.Close()
				return
			}
		}
	}
}

// Write sends data on the TTLV characteristic, retrying up to
// writeRetries times with writeRetryDelay backoff on failure.
func (a *Adapter) Write(ctx context.Context, data []byte) error {
	var lastErr error
	for attempt := 0; attempt <= writeRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(writeRetryDelay):
			}
		}
		_, err := a.char.WriteWithoutResponse(data)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return errs.NewTransportError(fmt.Sprintf("write failed after %d attempts", writeRetries+1), lastErr, true)
}

// Notifications returns the channel of inbound notification payloads, in
// arrival order. It is closed when the adapter is closed.
func (a *Adapter) Notifications() <-chan []byte {
	return a.notifications
}

// Close disconnects the device and stops the silence monitor. It is safe
// to call more than once.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if !a.connected {
		a.mu.Unlock()
		return nil
	}
	a.connected = false
	a.mu.Unlock()

	if a.monitorCancel != nil {
		a.monitorCancel()
	}
	err := a.device.Disconnect()
	close(a.notifications)
	if err != nil {
		return errs.NewTransportError("failed to disconnect cleanly", err, false)
	}
	return nil
}
