package zcl

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DefaultValue is an attribute default as written in the catalogue plus its
// canonical interpretation.
//
// Canonical literals are: 0x-prefixed hex or decimal without leading zeros
// for numeric, enum and bitmap types (hex is read as raw bits for signed
// types), true/false/0/1 for bool, plain text for character strings and
// 0x-prefixed hex bytes for octet strings. Anything else keeps Raw, leaves
// Value and Bytes empty and explains itself in Review.
type DefaultValue struct {
	Raw    string `json:"raw,omitempty"`
	Value  any    `json:"value,omitempty"`
	Bytes  []byte `json:"bytes,omitempty"` // wire encoding of Value
	Review string `json:"review,omitempty"`
}

// IsSet reports whether the catalogue declares a default.
func (d DefaultValue) IsSet() bool {
	return d.Raw != ""
}

// NeedsReview reports whether the literal could not be canonicalised.
func (d DefaultValue) NeedsReview() bool {
	return d.Review != ""
}

// DefaultReview identifies an attribute default that needs manual review.
type DefaultReview struct {
	ClusterID   uint16   `json:"cluster_id"`
	Role        Role     `json:"role"`
	AttributeID uint16   `json:"attribute_id"`
	Name        string   `json:"name"`
	Type        DataType `json:"type"`
	Raw         string   `json:"raw"`
	Reason      string   `json:"reason"`
}

func parseDefault(t DataType, raw string) DefaultValue {
	d := DefaultValue{Raw: raw}
	text := strings.TrimSpace(raw)
	if text == "" {
		return d
	}

	id, err := t.TypeID()
	if err != nil {
		d.Review = "no canonical encoding for application-specific type"
		return d
	}
	info := typeTable[id]

	var val any
	switch info.kind {
	case kindNone:
		d.Review = "nodata attribute declares a default"
	case kindBool:
		switch strings.ToLower(text) {
		case "true", "1", "0x01":
			val = true
		case "false", "0", "0x00":
			val = false
		default:
			d.Review = "not a boolean literal"
		}
	case kindUnsigned:
		v, ok := parseUnsignedLiteral(text)
		if !ok {
			d.Review = "ambiguous numeric literal"
			break
		}
		val = v
	case kindSigned:
		v, ok := parseSignedLiteral(text, info.width)
		if !ok {
			d.Review = "ambiguous numeric literal"
			break
		}
		val = v
	case kindFloat:
		if info.width == 2 {
			v, ok := parseUnsignedLiteral(text)
			if !ok {
				d.Review = "semi-precision default must be a raw literal"
				break
			}
			val = v
			break
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			d.Review = "not a floating point literal"
			break
		}
		val = v
	case kindEUI64:
		if !hasHexPrefix(text) || len(text) > 18 {
			d.Review = "EUI64 default must be a 0x-prefixed literal"
			break
		}
		v, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			d.Review = "EUI64 default must be a 0x-prefixed literal"
			break
		}
		val = v
	case kindChars:
		if strings.HasPrefix(text, "{") {
			d.Review = "initializer list for a string type"
			break
		}
		val = raw
	case kindOctets:
		if !hasHexPrefix(text) {
			d.Review = "octet string default must be 0x-prefixed hex"
			break
		}
		b, err := hex.DecodeString(text[2:])
		if err != nil {
			d.Review = "octet string default must be 0x-prefixed hex"
			break
		}
		val = b
	case kindComposite:
		d.Review = fmt.Sprintf("no canonical encoding for %s", info.name)
	}
	if d.Review != "" {
		return d
	}

	b, err := EncodeValue(id, val)
	if err != nil {
		d.Review = err.Error()
		return d
	}
	decoded, _, err := DecodeValue(id, b)
	if err != nil {
		d.Review = err.Error()
		return d
	}
	d.Value = decoded
	d.Bytes = b
	return d
}

func hasHexPrefix(s string) bool {
	return len(s) > 2 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"))
}

// parseUnsignedLiteral accepts 0x-prefixed hex or decimal without leading
// zeros. "00000000" is rejected: it could be decimal, hex or a bit pattern.
func parseUnsignedLiteral(s string) (uint64, bool) {
	if hasHexPrefix(s) {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return v, err == nil
	}
	if s == "0" {
		return 0, true
	}
	if s == "" || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

func parseSignedLiteral(s string, width int) (int64, bool) {
	if hasHexPrefix(s) {
		v, ok := parseUnsignedLiteral(s)
		if !ok || v > maxUnsigned(width) {
			return 0, false
		}
		return signExtend(v, width), true
	}
	neg := strings.HasPrefix(s, "-")
	v, ok := parseUnsignedLiteral(strings.TrimPrefix(s, "-"))
	if !ok || v > 1<<63 {
		return 0, false
	}
	if neg {
		return -int64(v), true
	}
	if v > 1<<63-1 {
		return 0, false
	}
	return int64(v), true
}
