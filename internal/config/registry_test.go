package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "quecble") {
		t.Errorf("GetConfigDir() = %v, should contain 'quecble'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.AutoScan != true {
		t.Error("NewRegistry().Preferences.AutoScan should be true by default")
	}
	if reg.Preferences.ScanTimeoutSeconds != 10 {
		t.Errorf("NewRegistry().Preferences.ScanTimeoutSeconds = %v, want 10", reg.Preferences.ScanTimeoutSeconds)
	}
}

func TestRegistryEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	device1 := reg.EnsureDevice("deadbeef")
	if device1 == nil {
		t.Fatal("EnsureDevice() returned nil")
	}

	device2 := reg.EnsureDevice("deadbeef")
	if device1 != device2 {
		t.Error("EnsureDevice() should return same instance for same device_key")
	}

	device3 := reg.EnsureDevice("cafef00d")
	if device1 == device3 {
		t.Error("EnsureDevice() should create new instance for different device_key")
	}
}

func TestRegistryUpdateDeviceLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateDeviceLastSeen("deadbeef", "AA:BB:CC:DD:EE:FF", "abcd", 0x03)
	after := time.Now()

	device := reg.GetDevice("deadbeef")
	if device == nil {
		t.Fatal("Device should exist after UpdateDeviceLastSeen()")
	}
	if device.Address != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("Address = %v, want AA:BB:CC:DD:EE:FF", device.Address)
	}
	if device.ProductKey != "abcd" {
		t.Errorf("ProductKey = %v, want abcd", device.ProductKey)
	}
	if device.DeviceStatus != 0x03 {
		t.Errorf("DeviceStatus = %v, want 3", device.DeviceStatus)
	}
	if device.LastSeen.Before(before) || device.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", device.LastSeen, before, after)
	}
}

func TestRegistrySetDeviceNickname(t *testing.T) {
	reg := NewRegistry()
	reg.SetDeviceNickname("deadbeef", "Living Room Sensor")

	device := reg.GetDevice("deadbeef")
	if device == nil {
		t.Fatal("Device should exist after SetDeviceNickname()")
	}
	if device.Nickname != "Living Room Sensor" {
		t.Errorf("Nickname = %v, want 'Living Room Sensor'", device.Nickname)
	}
}

func TestRegistryNeverSerializesBindingKey(t *testing.T) {
	reg := NewRegistry()
	reg.SetDeviceNickname("deadbeef", "Test Device")

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	if strings.Contains(string(data), "binding") {
		t.Fatalf("marshaled registry must never mention a binding key, got:\n%s", data)
	}
}

func TestRegistryYAMLFileRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "quecble-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	testConfigPath := filepath.Join(tmpDir, "config.yaml")

	reg := NewRegistry()
	reg.SetDeviceNickname("deadbeef", "Test Device")
	reg.UpdateDeviceLastSeen("deadbeef", "AA:BB:CC:DD:EE:FF", "abcd", 1)

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	if err := os.WriteFile(testConfigPath, data, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	raw, err := os.ReadFile(testConfigPath)
	if err != nil {
		t.Fatalf("Failed to read test config: %v", err)
	}
	var loaded Registry
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}

	device := loaded.GetDevice("deadbeef")
	if device == nil {
		t.Fatal("Device should exist in loaded registry")
	}
	if device.Nickname != "Test Device" {
		t.Errorf("Loaded nickname = %v, want 'Test Device'", device.Nickname)
	}
	if device.ProductKey != "abcd" {
		t.Errorf("Loaded product_key = %v, want abcd", device.ProductKey)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkEnsureDevice(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureDevice("deadbeef")
	}
}
