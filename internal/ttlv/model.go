package ttlv

// Kind identifies which arm of the Value tagged union is populated.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindStr
	KindInt
	KindFloat
	KindBin
	KindStruct
)

// Value is the algebraic value carried by a Field. Only one of the typed
// fields is meaningful, selected by Kind. Str exists purely for encoder
// convenience: a caller building a numeric field may hand it a decimal
// string and the encoder formats it exactly as it would an Int or Float.
// The decoder never produces a Str value.
type Value struct {
	Kind   Kind
	Bool   bool
	Str    string
	Int    int64
	Float  float64
	Bin    []byte
	Struct []Field
}

func NoneValue() Value                { return Value{Kind: KindNone} }
func BoolValue(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func StrValue(s string) Value         { return Value{Kind: KindStr, Str: s} }
func IntValue(i int64) Value          { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value      { return Value{Kind: KindFloat, Float: f} }
func BinValue(b []byte) Value         { return Value{Kind: KindBin, Bin: b} }
func StructValue(f []Field) Value     { return Value{Kind: KindStruct, Struct: f} }

// Wire type IDs, per the frame format: the 3 low bits of a field header.
const (
	TypeBoolFalse uint8 = 0
	TypeBoolTrue  uint8 = 1
	TypeNumeric   uint8 = 2
	TypeBinary    uint8 = 3
	TypeStruct    uint8 = 4
	TypeBinaryAlt uint8 = 5 // alias of TypeBinary on the wire
)

// Field is one TTLV element: a 13-bit id, a 3-bit type tag, and an optional
// value. CarriesValue=false means the field encodes as its id alone, used
// for read-request payloads.
type Field struct {
	ID           uint16
	TypeID       uint8
	CarriesValue bool
	Value        Value
}

// NewField starts a bare field. Use the With* builders to attach a value;
// they also set TypeID to the value's canonical wire type.
func NewField(id uint16, typeID uint8, carriesValue bool) Field {
	return Field{ID: id, TypeID: typeID, CarriesValue: carriesValue, Value: NoneValue()}
}

func (f Field) WithBool(b bool) Field {
	f.Value = BoolValue(b)
	if b {
		f.TypeID = TypeBoolTrue
	} else {
		f.TypeID = TypeBoolFalse
	}
	f.CarriesValue = true
	return f
}

func (f Field) WithString(s string) Field {
	f.Value = StrValue(s)
	f.TypeID = TypeNumeric
	f.CarriesValue = true
	return f
}

func (f Field) WithInt(i int64) Field {
	f.Value = IntValue(i)
	f.TypeID = TypeNumeric
	f.CarriesValue = true
	return f
}

func (f Field) WithFloat(v float64) Field {
	f.Value = FloatValue(v)
	f.TypeID = TypeNumeric
	f.CarriesValue = true
	return f
}

func (f Field) WithBinary(b []byte) Field {
	f.Value = BinValue(b)
	f.TypeID = TypeBinary
	f.CarriesValue = true
	return f
}

func (f Field) WithStruct(children []Field) Field {
	f.Value = StructValue(children)
	f.TypeID = TypeStruct
	f.CarriesValue = true
	return f
}

func (f Field) AsBool() (bool, bool) {
	if f.Value.Kind != KindBool {
		return false, false
	}
	return f.Value.Bool, true
}

func (f Field) AsInt() (int64, bool) {
	if f.Value.Kind != KindInt {
		return 0, false
	}
	return f.Value.Int, true
}

func (f Field) AsFloat() (float64, bool) {
	if f.Value.Kind != KindFloat {
		return 0, false
	}
	return f.Value.Float, true
}

func (f Field) AsBinary() ([]byte, bool) {
	if f.Value.Kind != KindBin {
		return nil, false
	}
	return f.Value.Bin, true
}

func (f Field) AsStruct() ([]Field, bool) {
	if f.Value.Kind != KindStruct {
		return nil, false
	}
	return f.Value.Struct, true
}

// CommandFrame is a decoded or pre-encode TTLV command: cmd 0 and 0xFFFF
// are reserved sentinels, and cmd 0x0024 selects the Transparent path
// instead of this one.
type CommandFrame struct {
	Cmd       uint16
	PacketID  uint16
	Payloads  []Field
}

// TransparentFrame carries an opaque payload (cmd 0x0024) the codec does
// not interpret.
type TransparentFrame struct {
	Cmd      uint16
	PacketID uint16
	Raw      []byte
}

// FindField returns the first payload field with the given id.
func (c CommandFrame) FindField(id uint16) (Field, bool) {
	for _, f := range c.Payloads {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}
