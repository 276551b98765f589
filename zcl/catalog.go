package zcl

import "fmt"

// Catalog holds every cluster definition and answers identity queries. It is
// built once and never modified, so it needs no locking.
type Catalog struct {
	clusters []*ClusterDef
	byID     map[uint16]*ClusterDef
	byName   map[string]*ClusterDef
}

// newCatalog takes ownership of defs. Duplicate ids or names are fatal.
func newCatalog(defs []*ClusterDef) (*Catalog, error) {
	c := &Catalog{
		clusters: make([]*ClusterDef, 0, len(defs)),
		byID:     make(map[uint16]*ClusterDef, len(defs)),
		byName:   make(map[string]*ClusterDef, len(defs)),
	}
	var problems []string
	for _, d := range defs {
		if prev, ok := c.byID[d.ID]; ok {
			problems = append(problems, fmt.Sprintf("duplicate cluster id 0x%04X (%q and %q)", d.ID, prev.Name, d.Name))
			continue
		}
		if prev, ok := c.byName[d.Name]; ok {
			problems = append(problems, fmt.Sprintf("duplicate cluster name %q (0x%04X and 0x%04X)", d.Name, prev.ID, d.ID))
			continue
		}
		c.byID[d.ID] = d
		c.byName[d.Name] = d
		c.clusters = append(c.clusters, d)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return c, nil
}

// ByID returns a copy of the cluster with the given id.
func (c *Catalog) ByID(id uint16) (ClusterDef, error) {
	d, ok := c.byID[id]
	if !ok {
		return ClusterDef{}, &NotFoundError{Kind: KindCluster, ClusterID: id}
	}
	return *d.DeepCopy(), nil
}

// ByName returns a copy of the cluster with exactly this name (case-sensitive).
func (c *Catalog) ByName(name string) (ClusterDef, error) {
	d, ok := c.byName[name]
	if !ok {
		return ClusterDef{}, &NotFoundError{Kind: KindCluster, Name: name}
	}
	return *d.DeepCopy(), nil
}

// All returns copies of every cluster in catalogue order.
func (c *Catalog) All() []ClusterDef {
	result := make([]ClusterDef, 0, len(c.clusters))
	for _, d := range c.clusters {
		result = append(result, *d.DeepCopy())
	}
	return result
}

// Len returns the number of clusters.
func (c *Catalog) Len() int {
	return len(c.clusters)
}

// Has reports whether a cluster id is known.
func (c *Catalog) Has(id uint16) bool {
	_, ok := c.byID[id]
	return ok
}

// lookup returns the shared definition without copying.
func (c *Catalog) lookup(id uint16) (*ClusterDef, error) {
	d, ok := c.byID[id]
	if !ok {
		return nil, &NotFoundError{Kind: KindCluster, ClusterID: id}
	}
	return d, nil
}
