package zcl

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ZCL data type IDs
const (
	TypeNoData     uint8 = 0x00
	TypeBool       uint8 = 0x10
	TypeBitmap8    uint8 = 0x18
	TypeBitmap16   uint8 = 0x19
	TypeBitmap24   uint8 = 0x1A
	TypeBitmap32   uint8 = 0x1B
	TypeUint8      uint8 = 0x20
	TypeUint16     uint8 = 0x21
	TypeUint24     uint8 = 0x22
	TypeUint32     uint8 = 0x23
	TypeUint40     uint8 = 0x24
	TypeUint48     uint8 = 0x25
	TypeInt8       uint8 = 0x28
	TypeInt16      uint8 = 0x29
	TypeInt24      uint8 = 0x2A
	TypeInt32      uint8 = 0x2B
	TypeEnum8      uint8 = 0x30
	TypeEnum16     uint8 = 0x31
	TypeFloat16    uint8 = 0x38
	TypeFloat32    uint8 = 0x39
	TypeFloat64    uint8 = 0x3A
	TypeOctetStr   uint8 = 0x41
	TypeCharStr    uint8 = 0x42
	TypeOctetStr16 uint8 = 0x43
	TypeCharStr16  uint8 = 0x44
	TypeArray      uint8 = 0x48
	TypeStruct     uint8 = 0x4C
	TypeToD        uint8 = 0xE0 // Time of Day
	TypeDate       uint8 = 0xE1
	TypeUTC        uint8 = 0xE2
	TypeClusterID  uint8 = 0xE8
	TypeAttrID     uint8 = 0xE9
	TypeEUI64      uint8 = 0xF0
)

// VariableWidth is the width reported for length-prefixed and composite types.
const VariableWidth = -1

// DataType is an attribute type tag exactly as written in a catalogue
// document. Tags outside the enumeration are application-specific named
// types; they load fine but have no wire width.
type DataType string

// Canonical tags.
const (
	DataNoData     DataType = "nodata"
	DataBool       DataType = "bool"
	DataMap8       DataType = "map8"
	DataMap16      DataType = "map16"
	DataMap24      DataType = "map24"
	DataMap32      DataType = "map32"
	DataUint8      DataType = "uint8"
	DataUint16     DataType = "uint16"
	DataUint24     DataType = "uint24"
	DataUint32     DataType = "uint32"
	DataUint40     DataType = "uint40"
	DataUint48     DataType = "uint48"
	DataInt8       DataType = "int8"
	DataInt16      DataType = "int16"
	DataInt24      DataType = "int24"
	DataInt32      DataType = "int32"
	DataEnum8      DataType = "enum8"
	DataEnum16     DataType = "enum16"
	DataFloat16    DataType = "float16"
	DataFloat32    DataType = "float32"
	DataFloat64    DataType = "float64"
	DataOctetStr   DataType = "octstr"
	DataCharStr    DataType = "string"
	DataOctetStr16 DataType = "octstr16"
	DataCharStr16  DataType = "string16"
	DataArray      DataType = "array"
	DataStruct     DataType = "struct"
	DataToD        DataType = "ToD"
	DataDate       DataType = "date"
	DataUTC        DataType = "UTC"
	DataClusterID  DataType = "clusterId"
	DataAttrID     DataType = "attribId"
	DataEUI64      DataType = "EUI64"

	// DataUint8Array is the byte-array tag the stack tables use for both
	// character and octet strings.
	DataUint8Array DataType = "uint8[]"
)

type valueKind uint8

const (
	kindNone valueKind = iota
	kindBool
	kindUnsigned
	kindSigned
	kindFloat
	kindEUI64
	kindChars
	kindOctets
	kindComposite
)

type typeInfo struct {
	name   DataType
	kind   valueKind
	width  int // bytes, or VariableWidth
	prefix int // length prefix bytes for string kinds
}

var typeTable = map[uint8]typeInfo{
	TypeNoData:     {DataNoData, kindNone, 0, 0},
	TypeBool:       {DataBool, kindBool, 1, 0},
	TypeBitmap8:    {DataMap8, kindUnsigned, 1, 0},
	TypeBitmap16:   {DataMap16, kindUnsigned, 2, 0},
	TypeBitmap24:   {DataMap24, kindUnsigned, 3, 0},
	TypeBitmap32:   {DataMap32, kindUnsigned, 4, 0},
	TypeUint8:      {DataUint8, kindUnsigned, 1, 0},
	TypeUint16:     {DataUint16, kindUnsigned, 2, 0},
	TypeUint24:     {DataUint24, kindUnsigned, 3, 0},
	TypeUint32:     {DataUint32, kindUnsigned, 4, 0},
	TypeUint40:     {DataUint40, kindUnsigned, 5, 0},
	TypeUint48:     {DataUint48, kindUnsigned, 6, 0},
	TypeInt8:       {DataInt8, kindSigned, 1, 0},
	TypeInt16:      {DataInt16, kindSigned, 2, 0},
	TypeInt24:      {DataInt24, kindSigned, 3, 0},
	TypeInt32:      {DataInt32, kindSigned, 4, 0},
	TypeEnum8:      {DataEnum8, kindUnsigned, 1, 0},
	TypeEnum16:     {DataEnum16, kindUnsigned, 2, 0},
	TypeFloat16:    {DataFloat16, kindFloat, 2, 0},
	TypeFloat32:    {DataFloat32, kindFloat, 4, 0},
	TypeFloat64:    {DataFloat64, kindFloat, 8, 0},
	TypeOctetStr:   {DataOctetStr, kindOctets, VariableWidth, 1},
	TypeCharStr:    {DataCharStr, kindChars, VariableWidth, 1},
	TypeOctetStr16: {DataOctetStr16, kindOctets, VariableWidth, 2},
	TypeCharStr16:  {DataCharStr16, kindChars, VariableWidth, 2},
	TypeArray:      {DataArray, kindComposite, VariableWidth, 0},
	TypeStruct:     {DataStruct, kindComposite, VariableWidth, 0},
	TypeToD:        {DataToD, kindUnsigned, 4, 0},
	TypeDate:       {DataDate, kindUnsigned, 4, 0},
	TypeUTC:        {DataUTC, kindUnsigned, 4, 0},
	TypeClusterID:  {DataClusterID, kindUnsigned, 2, 0},
	TypeAttrID:     {DataAttrID, kindUnsigned, 2, 0},
	TypeEUI64:      {DataEUI64, kindEUI64, 8, 0},
}

// tagIndex maps every accepted spelling to a wire type ID.
var tagIndex = func() map[DataType]uint8 {
	idx := make(map[DataType]uint8, len(typeTable)+16)
	for id, info := range typeTable {
		idx[info.name] = id
	}
	aliases := map[DataType]uint8{
		DataUint8Array: TypeCharStr,
		"bitmap8":      TypeBitmap8,
		"bitmap16":     TypeBitmap16,
		"bitmap24":     TypeBitmap24,
		"bitmap32":     TypeBitmap32,
		"boolean":      TypeBool,
		"charstr":      TypeCharStr,
		"utc":          TypeUTC,
		"eui64":        TypeEUI64,
		"semi":         TypeFloat16,
		"single":       TypeFloat32,
		"double":       TypeFloat64,
	}
	for tag, id := range aliases {
		idx[tag] = id
	}
	return idx
}()

// TypeID returns the wire type ID for the tag.
func (t DataType) TypeID() (uint8, error) {
	id, ok := tagIndex[t]
	if !ok {
		return 0, &UnknownTypeError{Type: t}
	}
	return id, nil
}

// Width maps a data type to its fixed wire width in bytes, or VariableWidth
// for strings, arrays and structures. Unknown tags fail with UnknownTypeError.
func Width(t DataType) (int, error) {
	id, err := t.TypeID()
	if err != nil {
		return 0, err
	}
	return typeTable[id].width, nil
}

// TypeSize returns the fixed size in bytes of a wire type, or VariableWidth.
func TypeSize(typeID uint8) (int, error) {
	info, ok := typeTable[typeID]
	if !ok {
		return 0, &UnknownTypeError{Type: DataType(fmt.Sprintf("0x%02X", typeID))}
	}
	return info.width, nil
}

// TypeName returns a human-readable name for a ZCL type.
func TypeName(typeID uint8) string {
	if info, ok := typeTable[typeID]; ok {
		return string(info.name)
	}
	return fmt.Sprintf("0x%02X", typeID)
}

// DecodeValue decodes a ZCL typed value from raw bytes, returning the Go value and bytes consumed.
func DecodeValue(typeID uint8, data []byte) (any, int, error) {
	info, ok := typeTable[typeID]
	if !ok {
		return nil, 0, &UnknownTypeError{Type: DataType(fmt.Sprintf("0x%02X", typeID))}
	}

	switch info.kind {
	case kindNone:
		return nil, 0, nil
	case kindChars, kindOctets:
		return decodeString(info, data)
	case kindComposite:
		return nil, 0, fmt.Errorf("zcl: decode not supported for %s", info.name)
	}

	if len(data) < info.width {
		return nil, 0, fmt.Errorf("zcl: not enough data for %s: need %d, have %d", info.name, info.width, len(data))
	}
	raw := readUint(data, info.width)

	switch info.kind {
	case kindBool:
		return raw != 0, 1, nil
	case kindUnsigned:
		return narrowUnsigned(raw, info.width), info.width, nil
	case kindSigned:
		return narrowSigned(signExtend(raw, info.width), info.width), info.width, nil
	case kindFloat:
		switch info.width {
		case 2:
			return uint16(raw), 2, nil // semi-precision stays raw
		case 4:
			return math.Float32frombits(uint32(raw)), 4, nil
		default:
			return math.Float64frombits(raw), 8, nil
		}
	case kindEUI64:
		var addr [8]byte
		copy(addr[:], data[:8])
		return addr, 8, nil
	}
	return nil, 0, fmt.Errorf("zcl: decode not implemented for %s", info.name)
}

func decodeString(info typeInfo, data []byte) (any, int, error) {
	if len(data) < info.prefix {
		return nil, 0, fmt.Errorf("zcl: no length prefix for %s", info.name)
	}
	length := int(readUint(data, info.prefix))
	nonValue := 1<<(8*info.prefix) - 1
	if length == nonValue {
		return nil, info.prefix, nil
	}
	end := info.prefix + length
	if len(data) < end {
		return nil, 0, fmt.Errorf("zcl: %s truncated: need %d, have %d", info.name, length, len(data)-info.prefix)
	}
	if info.kind == kindChars {
		return string(data[info.prefix:end]), end, nil
	}
	b := make([]byte, length)
	copy(b, data[info.prefix:end])
	return b, end, nil
}

// EncodeValue encodes a Go value into ZCL wire format.
func EncodeValue(typeID uint8, val any) ([]byte, error) {
	info, ok := typeTable[typeID]
	if !ok {
		return nil, &UnknownTypeError{Type: DataType(fmt.Sprintf("0x%02X", typeID))}
	}

	switch info.kind {
	case kindNone:
		return nil, nil

	case kindBool:
		v, ok := toBool(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to bool", val)
		}
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case kindUnsigned:
		v, ok := toUint64(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
		}
		if limit := maxUnsigned(info.width); v > limit {
			return nil, fmt.Errorf("zcl: %w: %d overflows %s (max %d)", ErrInvalidValue, v, info.name, limit)
		}
		return putUint(v, info.width), nil

	case kindSigned:
		v, ok := toInt64(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
		}
		lo, hi := signedRange(info.width)
		if v < lo || v > hi {
			return nil, fmt.Errorf("zcl: %w: %d overflows %s (range %d..%d)", ErrInvalidValue, v, info.name, lo, hi)
		}
		return putUint(uint64(v), info.width), nil

	case kindFloat:
		if info.width == 2 {
			v, ok := toUint64(val)
			if !ok || v > math.MaxUint16 {
				return nil, fmt.Errorf("zcl: cannot convert %T to float16 (raw uint16)", val)
			}
			return putUint(v, 2), nil
		}
		v, ok := toFloat64(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
		}
		if info.width == 4 {
			return putUint(uint64(math.Float32bits(float32(v))), 4), nil
		}
		return putUint(math.Float64bits(v), 8), nil

	case kindEUI64:
		switch a := val.(type) {
		case [8]byte:
			return append([]byte(nil), a[:]...), nil
		case []byte:
			if len(a) != 8 {
				return nil, fmt.Errorf("zcl: EUI64 requires 8 bytes, got %d", len(a))
			}
			return append([]byte(nil), a...), nil
		case uint64:
			return putUint(a, 8), nil
		default:
			return nil, fmt.Errorf("zcl: cannot convert %T to EUI64", val)
		}

	case kindChars, kindOctets:
		var payload []byte
		switch v := val.(type) {
		case string:
			if info.kind != kindChars {
				return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
			}
			payload = []byte(v)
		case []byte:
			if info.kind != kindOctets {
				return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
			}
			payload = v
		default:
			return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
		}
		limit := 1<<(8*info.prefix) - 2
		if len(payload) > limit {
			return nil, fmt.Errorf("zcl: %w: data too long for %s: %d (max %d)", ErrInvalidValue, info.name, len(payload), limit)
		}
		buf := putUint(uint64(len(payload)), info.prefix)
		return append(buf, payload...), nil
	}

	return nil, fmt.Errorf("zcl: encode not implemented for %s", info.name)
}

func readUint(data []byte, width int) uint64 {
	if width == 8 {
		return binary.LittleEndian.Uint64(data)
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[i])
	}
	return v
}

func putUint(v uint64, width int) []byte {
	buf := make([]byte, width)
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
	return buf
}

func signExtend(raw uint64, width int) int64 {
	shift := 64 - 8*uint(width)
	return int64(raw<<shift) >> shift
}

func narrowUnsigned(v uint64, width int) any {
	switch {
	case width == 1:
		return uint8(v)
	case width == 2:
		return uint16(v)
	case width <= 4:
		return uint32(v)
	default:
		return v
	}
}

func narrowSigned(v int64, width int) any {
	switch {
	case width == 1:
		return int8(v)
	case width == 2:
		return int16(v)
	default:
		return int32(v)
	}
}

func maxUnsigned(width int) uint64 {
	if width >= 8 {
		return math.MaxUint64
	}
	return 1<<(8*uint(width)) - 1
}

func signedRange(width int) (int64, int64) {
	hi := int64(1)<<(8*uint(width)-1) - 1
	return -hi - 1, hi
}

func toBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case float64:
		return val != 0, true
	case int:
		return val != 0, true
	case uint64:
		return val != 0, true
	}
	return false, false
}

func toUint64(v any) (uint64, bool) {
	switch val := v.(type) {
	case uint8:
		return uint64(val), true
	case uint16:
		return uint64(val), true
	case uint32:
		return uint64(val), true
	case uint64:
		return val, true
	case uint:
		return uint64(val), true
	case int:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case int64:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case float64:
		if val < 0 || val != math.Trunc(val) {
			return 0, false
		}
		return uint64(val), true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case int:
		return int64(val), true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case float64:
		if val > math.MaxInt64 || val < math.MinInt64 || val != math.Trunc(val) {
			return 0, false
		}
		return int64(val), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	}
	return 0, false
}
