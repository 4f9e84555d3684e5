package ttlv

import (
	"encoding/binary"
	"math"

	"github.com/quecble/quecble/internal/errs"
)

// maxStructDepth bounds recursive struct payload parsing; frames nesting
// deeper than this are rejected wholesale rather than risking a stack
// overflow on a pathological input.
const maxStructDepth = 16

// EventKind identifies which arm of a DecodeEvent is populated.
type EventKind uint8

const (
	EventIncomplete EventKind = iota
	EventError
	EventSuccess
	EventTransparent
)

// DecodeEvent is one outcome of a Decoder.Feed call. Exactly one of Frame,
// Transparent, or Err is meaningful, selected by Kind.
type DecodeEvent struct {
	Kind        EventKind
	Frame       CommandFrame
	Transparent TransparentFrame
	Err         *errs.Error
}

// Decoder is a stateful stream decoder: it owns an accumulator buffer and
// nothing else. It never performs I/O and is not safe for concurrent use;
// callers that share a decoder across goroutines must serialize Feed calls
// themselves (client.Device feeds its decoder from one event-loop goroutine).
type Decoder struct {
	buf []byte
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the accumulator, un-stuffs it, and extracts as many
// complete frames as the buffer currently holds. An Incomplete event is
// emitted when bytes remain buffered awaiting more data, or when the call
// produced no other event.
func (d *Decoder) Feed(chunk []byte) []DecodeEvent {
	d.buf = append(d.buf, chunk...)
	d.buf = unstuff(d.buf)

	var events []DecodeEvent
	for {
		if len(d.buf) < 9 {
			if len(d.buf) > 0 || len(events) == 0 {
				events = append(events, DecodeEvent{Kind: EventIncomplete})
			}
			return events
		}

		s, found := findPreamble(d.buf)
		if !found {
			if d.buf[len(d.buf)-1] == 0xAA {
				d.buf = d.buf[len(d.buf)-1:]
				events = append(events, DecodeEvent{Kind: EventIncomplete})
			} else {
				d.buf = nil
				events = append(events, DecodeEvent{Kind: EventError, Err: errs.NewNoHeader()})
			}
			return events
		}

		if len(d.buf) < s+4 {
			d.buf = d.buf[s:]
			events = append(events, DecodeEvent{Kind: EventIncomplete})
			return events
		}

		payloadLen := int(binary.BigEndian.Uint16(d.buf[s+2 : s+4]))
		total := payloadLen + 4
		if len(d.buf) < s+total {
			d.buf = d.buf[s:]
			events = append(events, DecodeEvent{Kind: EventIncomplete})
			return events
		}

		frame := append([]byte(nil), d.buf[s:s+total]...)
		d.buf = d.buf[s+total:]
		events = append(events, validateAndParse(frame))
	}
}

// unstuff reverses byte-stuffing in place: wherever buf[i]=0xAA and
// buf[i+1]=0x55, it removes buf[i+1] and re-checks the same index i without
// advancing. This mirrors the original decoder exactly, including its one
// documented quirk: a doubled stuffing byte (0xAA 0x55 0x55) collapses all
// the way to a bare 0xAA rather than leaving 0xAA 0x55, because the second
// 0x55 slides into position i+1 and matches again on the next pass.
func unstuff(buf []byte) []byte {
	i := 0
	for i < len(buf)-1 {
		if buf[i] == 0xAA && buf[i+1] == 0x55 {
			buf = append(buf[:i+1], buf[i+2:]...)
		} else {
			i++
		}
	}
	return buf
}

func findPreamble(buf []byte) (int, bool) {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == 0xAA && buf[i+1] == 0xAA {
			return i, true
		}
	}
	return 0, false
}

func validateAndParse(frame []byte) DecodeEvent {
	expected := wrap8Sum(frame[5:])
	if expected != frame[4] {
		return DecodeEvent{Kind: EventError, Err: errs.NewCrcMismatch()}
	}

	packetID := binary.BigEndian.Uint16(frame[5:7])
	cmd := binary.BigEndian.Uint16(frame[7:9])
	if cmd == 0 || cmd == 0xFFFF {
		return DecodeEvent{Kind: EventError, Err: errs.NewInvalidCmd(cmd)}
	}

	if cmd == uint16(CmdTransparentRecv) {
		raw := append([]byte(nil), frame[9:]...)
		return DecodeEvent{Kind: EventTransparent, Transparent: TransparentFrame{
			Cmd: cmd, PacketID: packetID, Raw: raw,
		}}
	}

	fields, err := parsePayload(frame[9:], 0)
	if err != nil {
		return DecodeEvent{Kind: EventError, Err: err}
	}
	return DecodeEvent{Kind: EventSuccess, Frame: CommandFrame{
		Cmd: cmd, PacketID: packetID, Payloads: fields,
	}}
}

// parsePayload parses a flat top-level sequence of fields, stopping
// (without erroring) the moment a field would run past the end of data.
func parsePayload(data []byte, depth int) ([]Field, *errs.Error) {
	if depth > maxStructDepth {
		return nil, errs.NewTooDeep()
	}
	var fields []Field
	offset := 0
	for offset < len(data) {
		f, consumed, err, truncated := parseOneField(data[offset:], depth)
		if err != nil {
			return nil, err
		}
		if truncated {
			break
		}
		fields = append(fields, f)
		offset += consumed
	}
	return fields, nil
}

// parseOneField parses a single field at the start of data. truncated
// means there was not enough data left to complete this element;
// PayloadTruncated is not promoted to Error, the caller simply stops.
func parseOneField(data []byte, depth int) (field Field, consumed int, err *errs.Error, truncated bool) {
	if len(data) < 2 {
		return Field{}, 0, nil, true
	}
	head := binary.BigEndian.Uint16(data[0:2])
	id := (head >> 3) & 0x1FFF
	typ := uint8(head & 0x07)

	switch typ {
	case TypeBoolFalse, TypeBoolTrue:
		return NewField(id, typ, true).WithBool(typ == TypeBoolTrue), 2, nil, false

	case TypeBinary, TypeBinaryAlt:
		if len(data) < 4 {
			return Field{}, 0, nil, true
		}
		l := int(binary.BigEndian.Uint16(data[2:4]))
		if l == 0 || 4+l > len(data) {
			return Field{}, 0, nil, true
		}
		b := append([]byte(nil), data[4:4+l]...)
		return NewField(id, typ, true).WithBinary(b), 4 + l, nil, false

	case TypeNumeric:
		if len(data) < 3 {
			return Field{}, 0, nil, true
		}
		d := data[2]
		negative := d&0x80 != 0
		amp := int((d >> 3) & 0x0F)
		n := int(d&0x07) + 1
		if 3+n > len(data) {
			return Field{}, 0, nil, true
		}
		raw := data[3 : 3+n]
		var padded [8]byte
		copy(padded[8-n:], raw)
		u := binary.BigEndian.Uint64(padded[:])
		if !negative && n == 8 && u > math.MaxInt64 {
			return Field{}, 0, errs.NewOverflow(), false
		}
		var signed int64
		if negative {
			signed = -int64(u)
		} else {
			signed = int64(u)
		}
		if amp == 0 {
			return NewField(id, typ, true).WithInt(signed), 3 + n, nil, false
		}
		return NewField(id, typ, true).WithFloat(float64(signed) / math.Pow(10, float64(amp))), 3 + n, nil, false

	case TypeStruct:
		if len(data) < 4 {
			return Field{}, 0, nil, true
		}
		m := int(binary.BigEndian.Uint16(data[2:4]))
		children, childConsumed, cerr := parseStructChildren(data[4:], m, depth+1)
		if cerr != nil {
			return Field{}, 0, cerr, false
		}
		return NewField(id, typ, true).WithStruct(children), 4 + childConsumed, nil, false

	default:
		return Field{}, 0, nil, true
	}
}

func parseStructChildren(data []byte, count int, depth int) ([]Field, int, *errs.Error) {
	if depth > maxStructDepth {
		return nil, 0, errs.NewTooDeep()
	}
	children := make([]Field, 0, count)
	offset := 0
	for i := 0; i < count; i++ {
		f, consumed, err, truncated := parseOneField(data[offset:], depth)
		if err != nil {
			return nil, 0, err
		}
		if truncated {
			break
		}
		children = append(children, f)
		offset += consumed
	}
	return children, offset, nil
}
