package advertisement

import "testing"

// vectorWithBitEightSet mirrors the canonical worked example, padded with
// two trailing reserved bytes to clear the 19-byte minimum; the parser
// never reads past the flags field so the padding has no semantic effect.
func vectorWithBitEightSet() []byte {
	return []byte{
		0x45, 0x43, // "EC"
		0x00, 0x01, // version = 1
		0x04, 0x61, 0x62, 0x63, 0x64, // product_key = "abcd"
		0x04, 0xDE, 0xAD, 0xBE, 0xEF, // device_key raw bytes
		0x00,       // device_status
		0x01, 0x00, // flags = 0x0100 (bit8 set)
		0x00, 0x00, // padding to reach the 19-byte minimum
	}
}

func TestParseTrimsLastHexCharWhenBitEightSet(t *testing.T) {
	d, err := Parse(vectorWithBitEightSet(), "AA:BB:CC:DD:EE:FF", "quec-device")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.ProductKey != "abcd" {
		t.Fatalf("product_key = %q, want abcd", d.ProductKey)
	}
	if d.DeviceKey != "deadbee" {
		t.Fatalf("device_key = %q, want deadbee", d.DeviceKey)
	}
	if !d.IsOldDevice {
		t.Fatal("expected IsOldDevice true for bit8 flag")
	}
	if d.Version != 1 {
		t.Fatalf("version = %d, want 1", d.Version)
	}
}

func TestParseWithoutBitEightKeepsFullHexKey(t *testing.T) {
	v := vectorWithBitEightSet()
	v[15], v[16] = 0x00, 0x00 // clear flags entirely
	d, err := Parse(v, "", "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.DeviceKey != "deadbeef" {
		t.Fatalf("device_key = %q, want deadbeef", d.DeviceKey)
	}
	if d.IsOldDevice {
		t.Fatal("expected IsOldDevice false")
	}
}

func TestParseRejectsShortInput(t *testing.T) {
	_, err := Parse([]byte{0x45, 0x43, 0x00}, "", "")
	if err == nil {
		t.Fatal("expected DataTooShort error")
	}
}

func TestParseRejectsBadHeader(t *testing.T) {
	v := vectorWithBitEightSet()
	v[0] = 0x00
	_, err := Parse(v, "", "")
	if err == nil {
		t.Fatal("expected InvalidHeader error")
	}
}

func TestParseUppercasesWhenBitTwelveSet(t *testing.T) {
	v := vectorWithBitEightSet()
	// flags = bit8 | bit12 = 0x1100
	v[15], v[16] = 0x11, 0x00
	d, err := Parse(v, "", "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.DeviceKey != "DEADBEE" {
		t.Fatalf("device_key = %q, want DEADBEE", d.DeviceKey)
	}
}

func TestParseDerivesEndpointTypeAndCapabilityBits(t *testing.T) {
	v := vectorWithBitEightSet()
	// flags = 0b0000_0000_0010_1111: bits0-3 set, endpoint_type bits4-7 = 0b0010 = 2
	v[15], v[16] = 0x00, 0x2F
	d, err := Parse(v, "", "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !d.IsClientDrivenKey || !d.IsWifiConfigured || !d.IsBound || !d.IsEnableBind {
		t.Fatalf("capability bits not all set: %+v", d)
	}
	if d.EndpointType != 2 {
		t.Fatalf("endpoint_type = %d, want 2", d.EndpointType)
	}
}

func TestParseZeroFlagsLeavesDeviceKeyUntouched(t *testing.T) {
	v := vectorWithBitEightSet()
	v[15], v[16] = 0x00, 0x00
	d, err := Parse(v, "", "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Flags != 0 {
		t.Fatalf("flags = %d, want 0", d.Flags)
	}
	if d.DeviceKey != "deadbeef" {
		t.Fatalf("device_key = %q, want deadbeef", d.DeviceKey)
	}
}
