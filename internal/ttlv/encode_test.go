package ttlv

import (
	"bytes"
	"testing"
)

func TestEncodeReadCommand(t *testing.T) {
	frame := CommandFrame{
		Cmd:      uint16(CmdTlsRead),
		PacketID: 1000,
		Payloads: []Field{NewField(0x1001, TypeNumeric, false)},
	}
	res, err := EncodeCommand(frame, true, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0xAA, 0xAA, 0x00, 0x07, wrap8Sum([]byte{0x03, 0xE8, 0x00, 0x11, 0x10, 0x01}), 0x03, 0xE8, 0x00, 0x11, 0x10, 0x01}
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X, want % X", res.Bytes, want)
	}
}

func TestEncodeRandomChallenge(t *testing.T) {
	frame := CommandFrame{Cmd: uint16(CmdRandom), PacketID: 1000}
	res, err := EncodeCommand(frame, true, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	body := []byte{0x03, 0xE8, 0x70, 0x32}
	want := []byte{0xAA, 0xAA, 0x00, 0x05, wrap8Sum(body), 0x03, 0xE8, 0x70, 0x32}
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X, want % X", res.Bytes, want)
	}
}

func TestEncodeNumericIntDescriptor(t *testing.T) {
	field := NewField(1, TypeNumeric, true).WithInt(1)
	var buf bytes.Buffer
	if err := encodeField(&buf, field, false); err != nil {
		t.Fatalf("encodeField: %v", err)
	}
	got := buf.Bytes()
	// header(2) + descriptor + magnitude
	if got[2] != 0x00 || got[3] != 0x01 {
		t.Fatalf("descriptor/magnitude = % X, want 00 01", got[2:])
	}
}

func TestEncodeNumericFloat(t *testing.T) {
	field := NewField(2, TypeNumeric, true).WithFloat(3.14)
	var buf bytes.Buffer
	if err := encodeField(&buf, field, false); err != nil {
		t.Fatalf("encodeField: %v", err)
	}
	got := buf.Bytes()
	descriptor := got[2]
	amp := int((descriptor >> 3) & 0x0F)
	if amp != 2 {
		t.Fatalf("amp = %d, want 2", amp)
	}
	mag := got[3:]
	if !bytes.Equal(mag, []byte{0x01, 0x3A}) { // 314 = 0x013A
		t.Fatalf("magnitude = % X, want 01 3A", mag)
	}
}

func TestEncodeEmptyPayloadCommandLength(t *testing.T) {
	frame := CommandFrame{Cmd: uint16(CmdRandom), PacketID: 1000}
	res, err := EncodeCommand(frame, true, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(res.Bytes) != 9 {
		t.Fatalf("empty payload command length = %d, want 9", len(res.Bytes))
	}
}

func TestGarbleInsertsAfterDoubledPreambleByte(t *testing.T) {
	// A payload containing 0xAA 0xAA must come back as 0xAA 0x55 0xAA.
	in := []byte{0xAA, 0xAA, 0x00, 0x00, 0xAA, 0xAA}
	out := garble(in)
	want := []byte{0xAA, 0xAA, 0x00, 0x00, 0xAA, 0x55, 0xAA}
	if !bytes.Equal(out, want) {
		t.Fatalf("garble = % X, want % X", out, want)
	}
}

func TestGarbleLeavesPreambleAlone(t *testing.T) {
	in := []byte{0xAA, 0xAA, 0xAA, 0x55}
	out := garble(in)
	// index 0,1 are the exempt preamble; index2=0xAA followed by 0x55 at
	// index3 still gets stuffed.
	want := []byte{0xAA, 0xAA, 0xAA, 0x55, 0x55}
	if !bytes.Equal(out, want) {
		t.Fatalf("garble = % X, want % X", out, want)
	}
}

func TestSerialGeneratorWrapsAndSkipsReserved(t *testing.T) {
	gen := &SerialGenerator{next: 0xFFFE}
	first := gen.Next() // 0xFFFF would be the naive next value, must wrap
	if first != 1000 {
		t.Fatalf("wrapped value = %d, want 1000", first)
	}
	second := gen.Next()
	if second != 1001 {
		t.Fatalf("second value = %d, want 1001", second)
	}
}

func TestSerialGeneratorNeverEmitsZero(t *testing.T) {
	gen := NewSerialGenerator()
	v := gen.Next()
	if v == 0 || v == 0xFFFF {
		t.Fatalf("serial generator emitted reserved value %d", v)
	}
	if v != 1000 {
		t.Fatalf("first value = %d, want 1000", v)
	}
}
