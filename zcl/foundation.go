package zcl

import "errors"

// ZCL status codes
const (
	ZCLStatusSuccess            uint8 = 0x00
	ZCLStatusFailure            uint8 = 0x01
	ZCLStatusUnsupClusterCmd    uint8 = 0x81
	ZCLStatusUnsupportedAttr    uint8 = 0x86
	ZCLStatusInvalidValue       uint8 = 0x87
	ZCLStatusInvalidDataType    uint8 = 0x8D
	ZCLStatusUnsupportedCluster uint8 = 0xC3
)

// StatusFor maps a registry error to the status a protocol layer answers with.
// A nil error is success; anything unrecognised is a plain failure.
func StatusFor(err error) uint8 {
	if err == nil {
		return ZCLStatusSuccess
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		switch nf.Kind {
		case KindCluster:
			return ZCLStatusUnsupportedCluster
		case KindAttribute:
			return ZCLStatusUnsupportedAttr
		case KindCommand:
			return ZCLStatusUnsupClusterCmd
		}
		return ZCLStatusFailure
	}
	if errors.Is(err, ErrUnknownType) {
		return ZCLStatusInvalidDataType
	}
	if errors.Is(err, ErrInvalidValue) {
		return ZCLStatusInvalidValue
	}
	return ZCLStatusFailure
}
