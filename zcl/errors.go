package zcl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by every lookup miss (cluster, attribute or command).
	ErrNotFound = errors.New("not found")

	// ErrValidation is matched by every load-time failure.
	ErrValidation = errors.New("validation error")

	// ErrUnknownType is matched when a data type tag is outside the known enumeration.
	ErrUnknownType = errors.New("unknown data type")

	// ErrInvalidValue is matched when a value does not fit its data type.
	ErrInvalidValue = errors.New("invalid value")
)

// Lookup kinds reported by NotFoundError.
const (
	KindCluster   = "cluster"
	KindAttribute = "attribute"
	KindCommand   = "command"
	KindCallbacks = "callback group"
)

// NotFoundError reports a lookup that matched nothing. It is always local to
// the call that produced it.
type NotFoundError struct {
	Kind      string
	ClusterID uint16
	Role      Role
	ID        uint16
	Name      string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case KindCluster:
		if e.Name != "" {
			return fmt.Sprintf("zcl: cluster %q: %v", e.Name, ErrNotFound)
		}
		return fmt.Sprintf("zcl: cluster 0x%04X: %v", e.ClusterID, ErrNotFound)
	case KindAttribute:
		return fmt.Sprintf("zcl: attribute 0x%04X in cluster 0x%04X (%s): %v", e.ID, e.ClusterID, e.Role, ErrNotFound)
	case KindCommand:
		return fmt.Sprintf("zcl: command 0x%02X in cluster 0x%04X (%s): %v", e.ID, e.ClusterID, e.Role, ErrNotFound)
	default:
		return fmt.Sprintf("zcl: %s for cluster 0x%04X: %v", e.Kind, e.ClusterID, ErrNotFound)
	}
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a structurally invalid catalogue. Load never returns
// a registry together with one.
type ValidationError struct {
	Source   string
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("zcl: invalid catalogue")
	if e.Source != "" {
		b.WriteString(" ")
		b.WriteString(e.Source)
	}
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	switch len(e.Problems) {
	case 0:
	case 1:
		b.WriteString(": ")
		b.WriteString(e.Problems[0])
	default:
		fmt.Fprintf(&b, ": %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(source, path, format string, args ...any) *ValidationError {
	return &ValidationError{Source: source, Path: path, Problems: []string{fmt.Sprintf(format, args...)}}
}

// UnknownTypeError is returned when a data type has no entry in the type
// table. It is fatal to the decode attempt, not to the registry.
type UnknownTypeError struct {
	Type DataType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("zcl: %v %q", ErrUnknownType, string(e.Type))
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}
