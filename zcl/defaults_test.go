package zcl

import (
	"bytes"
	"testing"
)

func TestParseDefaultCanonical(t *testing.T) {
	tests := []struct {
		typ   DataType
		raw   string
		value any
		bytes []byte
	}{
		{"uint8", "0x08", uint8(8), []byte{0x08}},
		{"uint16", "0x0001", uint16(1), []byte{0x01, 0x00}},
		{"uint16", "0", uint16(0), []byte{0x00, 0x00}},
		{"uint32", "0x00003840", uint32(0x3840), []byte{0x40, 0x38, 0x00, 0x00}},
		{"enum8", "4", uint8(4), []byte{0x04}},
		{"map8", "0x00", uint8(0), []byte{0x00}},
		{"int16", "0x8000", int16(-32768), []byte{0x00, 0x80}},
		{"int16", "2600", int16(2600), []byte{0x28, 0x0A}},
		{"int8", "-5", int8(-5), []byte{0xFB}},
		{"bool", "true", true, []byte{0x01}},
		{"bool", "0x00", false, []byte{0x00}},
		{"bool", "1", true, []byte{0x01}},
		{"uint8[]", "Acme", "Acme", []byte{0x04, 'A', 'c', 'm', 'e'}},
		{"single", "1.5", float32(1.5), []byte{0x00, 0x00, 0xC0, 0x3F}},
	}
	for _, tt := range tests {
		d := parseDefault(tt.typ, tt.raw)
		if d.NeedsReview() {
			t.Errorf("%s %q: unexpected review %q", tt.typ, tt.raw, d.Review)
			continue
		}
		if d.Raw != tt.raw {
			t.Errorf("%s %q: Raw = %q", tt.typ, tt.raw, d.Raw)
		}
		if d.Value != tt.value {
			t.Errorf("%s %q: Value = %#v, want %#v", tt.typ, tt.raw, d.Value, tt.value)
		}
		if !bytes.Equal(d.Bytes, tt.bytes) {
			t.Errorf("%s %q: Bytes = %X, want %X", tt.typ, tt.raw, d.Bytes, tt.bytes)
		}
	}
}

func TestParseDefaultOctets(t *testing.T) {
	d := parseDefault("octstr", "0xDEAD")
	if d.NeedsReview() {
		t.Fatalf("review: %s", d.Review)
	}
	if !bytes.Equal(d.Value.([]byte), []byte{0xDE, 0xAD}) {
		t.Errorf("Value = %X", d.Value)
	}
	if !bytes.Equal(d.Bytes, []byte{0x02, 0xDE, 0xAD}) {
		t.Errorf("Bytes = %X", d.Bytes)
	}
}

func TestParseDefaultNeedsReview(t *testing.T) {
	tests := []struct {
		typ DataType
		raw string
	}{
		{"map32", "00000000"},
		{"uint16", "007"},
		{"array", "{ 1, 0x0000}"},
		{"uint8[]", "{ 0 }"},
		{"uint8", "0x100"},
		{"uint8", "abc"},
		{"int8", "0x1FF"},
		{"bool", "yes"},
		{"octstr", "DEAD"},
		{"ZclStatus", "0x00"},
		{"nodata", "0"},
		{"EUI64", "ffffffffffffffff"},
	}
	for _, tt := range tests {
		d := parseDefault(tt.typ, tt.raw)
		if !d.NeedsReview() {
			t.Errorf("%s %q: expected review, got value %#v", tt.typ, tt.raw, d.Value)
			continue
		}
		if d.Raw != tt.raw {
			t.Errorf("%s %q: Raw = %q", tt.typ, tt.raw, d.Raw)
		}
		if d.Value != nil || d.Bytes != nil {
			t.Errorf("%s %q: reviewed default carries a value", tt.typ, tt.raw)
		}
	}
}

func TestParseDefaultEmpty(t *testing.T) {
	d := parseDefault("uint8[]", "")
	if d.IsSet() || d.NeedsReview() || d.Value != nil {
		t.Errorf("empty default = %#v", d)
	}
	d = parseDefault("uint8", "   ")
	if d.NeedsReview() || d.Value != nil {
		t.Errorf("blank default = %#v", d)
	}
	if !d.IsSet() {
		t.Error("blank default should still keep its raw text")
	}
}

func TestParseUnsignedLiteral(t *testing.T) {
	good := map[string]uint64{"0": 0, "0x0": 0, "0X1F": 31, "10": 10, "65535": 65535}
	for s, want := range good {
		got, ok := parseUnsignedLiteral(s)
		if !ok || got != want {
			t.Errorf("parseUnsignedLiteral(%q) = %d, %v; want %d", s, got, ok, want)
		}
	}
	for _, s := range []string{"", "00", "01", "0x", "-1", "1e3", "0xZZ"} {
		if _, ok := parseUnsignedLiteral(s); ok {
			t.Errorf("parseUnsignedLiteral(%q) accepted", s)
		}
	}
}
