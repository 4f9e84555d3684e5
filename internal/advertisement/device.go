package advertisement

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/quecble/quecble/internal/errs"
)

// ManufacturerID is the BLE manufacturer-specific-data id QUEC devices
// advertise under ("QU" as a little-endian u16).
const ManufacturerID uint16 = 0x5551

const minManufacturerDataLen = 19

// DeviceDescriptor is what an advertisement decodes to: enough to identify
// the device and show a capability summary before a connection is made.
type DeviceDescriptor struct {
	Address      string
	LocalName    string
	Version      uint16
	ProductKey   string
	DeviceKey    string
	DeviceStatus uint8
	Flags        uint16

	IsClientDrivenKey bool
	IsWifiConfigured  bool
	IsBound           bool
	IsEnableBind      bool
	IsOldDevice       bool
	EndpointType      uint8
}

// Parse decodes manufacturerData (the bytes under ManufacturerID) into a
// DeviceDescriptor. address and localName are carried through from the
// scan result verbatim; Parse never inspects them.
func Parse(manufacturerData []byte, address, localName string) (DeviceDescriptor, error) {
	if len(manufacturerData) < minManufacturerDataLen {
		return DeviceDescriptor{}, errs.NewDataTooShort()
	}

	if manufacturerData[0] != 'E' || manufacturerData[1] != 'C' {
		return DeviceDescriptor{}, errs.NewInvalidHeader([2]byte{manufacturerData[0], manufacturerData[1]})
	}

	cursor := manufacturerData[2:]

	version := binary.BigEndian.Uint16(cursor[0:2])
	cursor = cursor[2:]

	productKeyBytes, rest, err := readField(cursor)
	if err != nil {
		return DeviceDescriptor{}, err
	}
	cursor = rest

	deviceKeyBytes, rest, err := readField(cursor)
	if err != nil {
		return DeviceDescriptor{}, err
	}
	cursor = rest

	if len(cursor) < 1 {
		return DeviceDescriptor{}, errs.NewInsufficientFieldData("device_status", 1)
	}
	deviceStatus := cursor[0]
	cursor = cursor[1:]

	var flags uint16
	if len(cursor) >= 2 {
		flags = binary.BigEndian.Uint16(cursor[0:2])
	}

	deviceKey := hex.EncodeToString(deviceKeyBytes)
	if flags>>8&0x1 == 0x1 && len(deviceKey) > 0 {
		deviceKey = deviceKey[:len(deviceKey)-1]
	}
	if flags>>12&0x1 == 0x1 {
		deviceKey = strings.ToUpper(deviceKey)
	}

	return DeviceDescriptor{
		Address:           address,
		LocalName:         localName,
		Version:           version,
		ProductKey:        string(productKeyBytes),
		DeviceKey:         deviceKey,
		DeviceStatus:      deviceStatus,
		Flags:             flags,
		IsClientDrivenKey: checkBit(flags, 0),
		IsWifiConfigured:  checkBit(flags, 1),
		IsBound:           checkBit(flags, 2),
		IsEnableBind:      checkBit(flags, 3),
		IsOldDevice:       checkBit(flags, 8),
		EndpointType:      uint8(flags >> 4 & 0x0F),
	}, nil
}

// readField reads a 1-byte length prefix followed by that many bytes,
// returning the field bytes and the remainder of data.
func readField(data []byte) (field []byte, rest []byte, err *errs.Error) {
	if len(data) < 1 {
		return nil, nil, errs.NewInsufficientFieldData("length prefix", 1)
	}
	n := int(data[0])
	data = data[1:]
	if len(data) < n {
		return nil, nil, errs.NewInsufficientFieldData("field body", n-len(data))
	}
	return data[:n], data[n:], nil
}

func checkBit(value uint16, bit uint) bool {
	return (value>>bit)&0x1 == 0x1
}
