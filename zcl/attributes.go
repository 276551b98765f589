package zcl

import "fmt"

// AttributeSchema resolves attribute metadata for a cluster role.
type AttributeSchema struct {
	catalog *Catalog
}

// ListFor returns the cluster-specific attributes of a role in catalogue
// order. Global attributes are left to Globals. A role without attributes,
// or an absent role, yields an empty slice; only an unknown cluster fails.
func (s *AttributeSchema) ListFor(clusterID uint16, role Role) ([]AttributeDef, error) {
	return s.filter(clusterID, role, false)
}

// Globals returns the global attributes (ClusterRevision,
// AttributeReportingStatus) a role declares.
func (s *AttributeSchema) Globals(clusterID uint16, role Role) ([]AttributeDef, error) {
	return s.filter(clusterID, role, true)
}

func (s *AttributeSchema) filter(clusterID uint16, role Role, global bool) ([]AttributeDef, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	c, err := s.catalog.lookup(clusterID)
	if err != nil {
		return nil, err
	}
	result := []AttributeDef{}
	rd := c.Role(role)
	if rd == nil {
		return result, nil
	}
	for i := range rd.Attributes {
		if rd.Attributes[i].IsGlobal() == global {
			result = append(result, rd.Attributes[i].clone())
		}
	}
	return result, nil
}

// Resolve returns one attribute, global or not.
func (s *AttributeSchema) Resolve(clusterID uint16, role Role, attrID uint16) (AttributeDef, error) {
	a, err := s.find(clusterID, role, attrID)
	if err != nil {
		return AttributeDef{}, err
	}
	return a.clone(), nil
}

func (s *AttributeSchema) find(clusterID uint16, role Role, attrID uint16) (*AttributeDef, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	c, err := s.catalog.lookup(clusterID)
	if err != nil {
		return nil, err
	}
	a := c.FindAttribute(role, attrID)
	if a == nil {
		return nil, &NotFoundError{Kind: KindAttribute, ClusterID: clusterID, Role: role, ID: attrID}
	}
	return a, nil
}

// DecodeWidth maps a data type to its fixed wire width, or VariableWidth.
func (s *AttributeSchema) DecodeWidth(t DataType) (int, error) {
	return Width(t)
}

// Interpret decodes one wire value of the given attribute, returning the Go
// value and the number of bytes consumed.
func (s *AttributeSchema) Interpret(clusterID uint16, role Role, attrID uint16, data []byte) (any, int, error) {
	a, err := s.find(clusterID, role, attrID)
	if err != nil {
		return nil, 0, err
	}
	typeID, err := a.Type.TypeID()
	if err != nil {
		return nil, 0, err
	}
	v, n, err := DecodeValue(typeID, data)
	if err != nil {
		return nil, 0, fmt.Errorf("attribute %s (0x%04X): %w", a.Name, a.ID, err)
	}
	return v, n, nil
}

func checkRole(r Role) error {
	if !r.Valid() {
		return fmt.Errorf("zcl: invalid role %q", string(r))
	}
	return nil
}
