package ttlv

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// EncodeResult is the product of either Encoder operation: the finished,
// byte-stuffed wire bytes plus the identifiers used to build them.
type EncodeResult struct {
	CmdKey   uint32 // (cmd << 16) | packet_id
	Bytes    []byte
	Cmd      uint16
	PacketID uint16
}

// SerialGenerator hands out monotonically increasing packet ids wrapped to
// [1000, 0xFFFE]. The zero value starts at 0 and the first Next() call
// returns 1000, matching the spec's serial-generator property exactly.
type SerialGenerator struct {
	mu   sync.Mutex
	next uint32
}

func NewSerialGenerator() *SerialGenerator {
	return &SerialGenerator{}
}

func (g *SerialGenerator) Next() uint16 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	if g.next < 1000 || g.next >= 0xFFFF {
		g.next = 1000
	}
	return uint16(g.next)
}

// EncodeCommand serializes frame into the wire envelope. When reusePacketID
// is true, frame.PacketID is used verbatim (masked to 16 bits); otherwise
// gen produces the next serial packet id. reusePacketID always wins, per
// the packet-id reservation rule: the caller is responsible for choosing.
func EncodeCommand(frame CommandFrame, reusePacketID bool, gen *SerialGenerator) (EncodeResult, error) {
	var payload bytes.Buffer
	isReadCmd := frame.Cmd == uint16(CmdTlsRead)
	for _, f := range frame.Payloads {
		if err := encodeField(&payload, f, isReadCmd); err != nil {
			return EncodeResult{}, err
		}
	}

	packetID := frame.PacketID
	if !reusePacketID {
		packetID = gen.Next()
	}
	return buildEnvelope(frame.Cmd, packetID, payload.Bytes()), nil
}

// EncodeTransparent builds the outbound counterpart of the decoder's
// 0x0024 Transparent path: the envelope's cmd is always CmdTransparentSend
// (0x0023) and the payload is frame.Raw verbatim, with no TTLV framing.
func EncodeTransparent(frame TransparentFrame, reusePacketID bool, gen *SerialGenerator) EncodeResult {
	packetID := frame.PacketID
	if !reusePacketID {
		packetID = gen.Next()
	}
	return buildEnvelope(uint16(CmdTransparentSend), packetID, frame.Raw)
}

func buildEnvelope(cmd uint16, packetID uint16, payload []byte) EncodeResult {
	body := make([]byte, 0, 4+len(payload))
	body = appendUint16(body, packetID)
	body = appendUint16(body, cmd)
	body = append(body, payload...)

	crc := wrap8Sum(body)
	length := 5 + len(payload)

	buf := make([]byte, 0, 5+len(body))
	buf = append(buf, 0xAA, 0xAA)
	buf = appendUint16(buf, uint16(length))
	buf = append(buf, crc)
	buf = append(buf, body...)

	buf = garble(buf)

	return EncodeResult{
		CmdKey:   (uint32(cmd) << 16) | uint32(packetID),
		Bytes:    buf,
		Cmd:      cmd,
		PacketID: packetID,
	}
}

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// wrap8Sum is the frame checksum: an 8-bit wrapping sum, seeded with the
// first byte of the range rather than zero, matching the original
// accumulator bit-for-bit (the two are equivalent modulo 256, but this
// keeps the implementation mirror exact).
func wrap8Sum(data []byte) byte {
	if len(data) == 0 {
		return 0
	}
	sum := data[0]
	for _, b := range data[1:] {
		sum += b
	}
	return sum
}

func encodeField(out *bytes.Buffer, f Field, isReadCmd bool) error {
	if isReadCmd || !f.CarriesValue {
		return writeUint16(out, f.ID)
	}

	header := (f.ID << 3) | uint16(f.TypeID&0x07)
	if err := writeUint16(out, header); err != nil {
		return err
	}

	switch f.TypeID {
	case TypeBoolFalse, TypeBoolTrue:
		return nil
	case TypeNumeric:
		d, mag, err := encodeNumericValue(f.Value)
		if err != nil {
			return err
		}
		out.WriteByte(d)
		out.Write(mag)
		return nil
	case TypeBinary, TypeBinaryAlt:
		b, _ := f.AsBinary()
		if err := writeUint16(out, uint16(len(b))); err != nil {
			return err
		}
		out.Write(b)
		return nil
	case TypeStruct:
		children, _ := f.AsStruct()
		if err := writeUint16(out, uint16(len(children))); err != nil {
			return err
		}
		for _, child := range children {
			if err := encodeField(out, child, isReadCmd); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("ttlv: field id=%d has unknown type_id %d", f.ID, f.TypeID)
	}
}

func writeUint16(out *bytes.Buffer, v uint16) error {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	_, err := out.Write(tmp[:])
	return err
}

// encodeNumericValue produces the type-2 descriptor byte and trimmed
// big-endian magnitude for an Int, Float, or numeric-decimal Str value.
func encodeNumericValue(v Value) (byte, []byte, error) {
	switch v.Kind {
	case KindInt:
		return encodeIntMagnitude(v.Int), intMagnitudeBytes(v.Int), nil
	case KindFloat:
		return encodeFloatMagnitude(v.Float)
	case KindStr:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("ttlv: %q is not a numeric decimal string: %w", v.Str, err)
		}
		return encodeFloatMagnitude(f)
	default:
		return 0, nil, fmt.Errorf("ttlv: value kind %d is not numeric", v.Kind)
	}
}

func intMagnitudeBytes(i int64) []byte {
	var u uint64
	if i < 0 {
		u = uint64(-i)
	} else {
		u = uint64(i)
	}
	return bigEndianTrimmed(u)
}

func encodeIntMagnitude(i int64) byte {
	mag := intMagnitudeBytes(i)
	var d byte
	if i < 0 {
		d |= 0x80
	}
	d |= byte(len(mag)-1) & 0x07
	return d
}

// encodeFloatMagnitude formats the magnitude of f with fifteen fractional
// digits, strips trailing zeros, and concatenates the integer and
// fractional digit strings into a single big-endian magnitude, per the
// spec's numeric encoding rule. amp is the count of remaining fractional
// digits after trimming.
func encodeFloatMagnitude(f float64) (byte, []byte, error) {
	negative := f < 0
	absF := math.Abs(f)

	formatted := strconv.FormatFloat(absF, 'f', 15, 64)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	fracPart = strings.TrimRight(fracPart, "0")
	amp := len(fracPart)
	if amp > 15 {
		return 0, nil, fmt.Errorf("ttlv: fractional digit count %d exceeds descriptor range", amp)
	}

	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		digits = "0"
	}

	u, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("ttlv: value %v does not fit an 8-byte magnitude: %w", f, err)
	}

	mag := bigEndianTrimmed(u)
	var d byte
	if negative {
		d |= 0x80
	}
	d |= byte(amp&0x0F) << 3
	d |= byte(len(mag)-1) & 0x07
	return d, mag, nil
}

func bigEndianTrimmed(u uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], u)
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	out := make([]byte, 8-i)
	copy(out, buf[i:])
	return out
}

// garble is the byte-stuffing pass: starting at index 2 (the preamble is
// exempt), insert a 0x55 immediately after any 0xAA whose successor is
// 0x55 or 0xAA, advancing the scan past the inserted byte.
func garble(buf []byte) []byte {
	out := make([]byte, len(buf))
	copy(out, buf)

	count := 2
	for count < len(out)-1 {
		if out[count] == 0xAA && (out[count+1] == 0x55 || out[count+1] == 0xAA) {
			out = insertByte(out, count+1, 0x55)
			count++
		}
		count++
	}
	return out
}

func insertByte(s []byte, idx int, b byte) []byte {
	s = append(s, 0)
	copy(s[idx+1:], s[idx:len(s)-1])
	s[idx] = b
	return s
}
