package config

import "time"

// Registry represents the entire user configuration file. It stores
// user-defined and discovery-derived metadata for QUEC devices and
// application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // keyed by device_key
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents locally-known metadata for a single QUEC device, keyed
// by its device_key in the Registry. The binding_key secret used for the
// login handshake is never stored here; it is always supplied out-of-band
// or prompted from the user at pairing time.
type Device struct {
	Nickname     string    `yaml:"nickname,omitempty"`    // user-friendly name
	Address      string    `yaml:"address,omitempty"`     // last known BLE address
	ProductKey   string    `yaml:"product_key,omitempty"` // from the last advertisement seen
	LastSeen     time.Time `yaml:"last_seen,omitempty"`   // last successful scan/connect time
	DeviceStatus uint8     `yaml:"device_status,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoScan           bool `yaml:"auto_scan"`            // scan for devices automatically on startup
	ScanTimeoutSeconds int  `yaml:"scan_timeout_seconds"` // BLE advertisement scan window
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			AutoScan:           true,
			ScanTimeoutSeconds: 10,
		},
	}
}

// GetDevice retrieves device metadata by device_key. Returns nil if the
// device doesn't exist in the registry.
func (r *Registry) GetDevice(deviceKey string) *Device {
	return r.Devices[deviceKey]
}

// EnsureDevice ensures a device entry exists in the registry, creating an
// empty one if necessary, and returns it.
func (r *Registry) EnsureDevice(deviceKey string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	if device, exists := r.Devices[deviceKey]; exists {
		return device
	}
	device := &Device{}
	r.Devices[deviceKey] = device
	return device
}

// UpdateDeviceLastSeen records a fresh sighting of a device: its address,
// product key, device status, and the current time.
func (r *Registry) UpdateDeviceLastSeen(deviceKey, address, productKey string, deviceStatus uint8) {
	device := r.EnsureDevice(deviceKey)
	device.Address = address
	device.ProductKey = productKey
	device.DeviceStatus = deviceStatus
	device.LastSeen = time.Now()
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(deviceKey, nickname string) {
	device := r.EnsureDevice(deviceKey)
	device.Nickname = nickname
}
