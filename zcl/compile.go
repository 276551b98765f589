package zcl

import (
	"fmt"
	"strconv"
	"strings"
)

// pendingCluster is a compiled cluster whose callback block has not yet been
// folded into a shared group.
type pendingCluster struct {
	def       ClusterDef
	callbacks *AppCallbackEntry
	source    string
}

type compileResult struct {
	clusters []pendingCluster
	reviews  []DefaultReview
	problems []string
}

func (cr *compileResult) addf(format string, args ...any) {
	cr.problems = append(cr.problems, fmt.Sprintf(format, args...))
}

// compileDocument converts one document into typed definitions. It keeps
// going after a problem so a single ValidationError lists all of them.
func compileDocument(source string, doc *Document) compileResult {
	var cr compileResult
	seenIDs := make(map[uint16]int)
	seenNames := make(map[string]int)

	for i := range doc.Clusters {
		entry := &doc.Clusters[i]
		path := fmt.Sprintf("cluster[%d]", i)

		id, err := parseHex16(entry.ID)
		if err != nil {
			cr.addf("%s._id: %v", path, err)
			continue
		}
		if strings.TrimSpace(entry.Name) == "" {
			cr.addf("%s._name: required", path)
			continue
		}
		if prev, ok := seenIDs[id]; ok {
			cr.addf("%s: duplicate cluster id 0x%04X (first at cluster[%d])", path, id, prev)
			continue
		}
		if prev, ok := seenNames[entry.Name]; ok {
			cr.addf("%s: duplicate cluster name %q (first at cluster[%d])", path, entry.Name, prev)
			continue
		}
		seenIDs[id] = i
		seenNames[entry.Name] = i

		def := ClusterDef{
			ID:                 id,
			Name:               entry.Name,
			Definition:         entry.Definition,
			Class:              entry.Class,
			Flag:               entry.Flag,
			PrimaryTransaction: entry.PrimaryTransaction,
			Location:           entry.Location,
		}
		def.Server = compileRole(&cr, path, id, RoleServer, entry.Server)
		def.Client = compileRole(&cr, path, id, RoleClient, entry.Client)

		cr.clusters = append(cr.clusters, pendingCluster{def: def, callbacks: entry.AppCallback, source: source})
	}
	return cr
}

func compileRole(cr *compileResult, path string, clusterID uint16, role Role, entry *RoleEntry) *RoleDef {
	if entry == nil {
		return nil
	}
	path = path + "." + string(role)
	rd := &RoleDef{
		Attributes: make([]AttributeDef, 0, len(entry.Attributes)),
		Commands:   make([]CommandDef, 0, len(entry.Commands)),
	}

	seenAttrs := make(map[uint16]bool)
	for i, a := range entry.Attributes {
		ap := fmt.Sprintf("%s.attribute[%d]", path, i)
		attr, ok := compileAttribute(cr, ap, clusterID, a)
		if !ok {
			continue
		}
		if seenAttrs[attr.ID] {
			cr.addf("%s: %s", ap, dupAttr(role, attr.ID))
			continue
		}
		seenAttrs[attr.ID] = true
		if attr.Default.NeedsReview() {
			cr.reviews = append(cr.reviews, DefaultReview{
				ClusterID:   clusterID,
				Role:        role,
				AttributeID: attr.ID,
				Name:        attr.Name,
				Type:        attr.Type,
				Raw:         attr.Default.Raw,
				Reason:      attr.Default.Review,
			})
		}
		rd.Attributes = append(rd.Attributes, attr)
	}

	seenCmds := make(map[uint8]bool)
	for i, c := range entry.Commands {
		cp := fmt.Sprintf("%s.command[%d]", path, i)
		cmd, ok := compileCommand(cr, cp, role, c)
		if !ok {
			continue
		}
		if seenCmds[cmd.ID] {
			cr.addf("%s: %s", cp, dupCmd(role, cmd.ID))
			continue
		}
		seenCmds[cmd.ID] = true
		rd.Commands = append(rd.Commands, cmd)
	}
	return rd
}

func compileAttribute(cr *compileResult, path string, clusterID uint16, a AttributeEntry) (AttributeDef, bool) {
	id, err := parseHex16(a.ID)
	if err != nil {
		cr.addf("%s._id: %v", path, err)
		return AttributeDef{}, false
	}
	if strings.TrimSpace(a.Name) == "" {
		cr.addf("%s._name: required", path)
		return AttributeDef{}, false
	}
	if a.Type == "" {
		cr.addf("%s._type: required", path)
		return AttributeDef{}, false
	}
	if a.ClusterID != "" {
		owner, err := parseHex16(a.ClusterID)
		if err != nil {
			cr.addf("%s._clusterID: %v", path, err)
			return AttributeDef{}, false
		}
		if owner != clusterID {
			cr.addf("%s._clusterID: 0x%04X does not match enclosing cluster 0x%04X", path, owner, clusterID)
			return AttributeDef{}, false
		}
	}

	var access uint8
	flags := []struct {
		field string
		raw   string
		bit   uint8
	}{
		{"_readable", a.Readable, AccessRead},
		{"_writable", a.Writable, AccessWrite},
		{"_reportable", a.Reportable, AccessReport},
	}
	for _, f := range flags {
		set, err := parseFlag(f.raw)
		if err != nil {
			cr.addf("%s.%s: %v", path, f.field, err)
			return AttributeDef{}, false
		}
		if set {
			access |= f.bit
		}
	}
	required, err := parseFlag(a.Required)
	if err != nil {
		cr.addf("%s._required: %v", path, err)
		return AttributeDef{}, false
	}

	t := DataType(a.Type)
	return AttributeDef{
		ID:         id,
		Name:       a.Name,
		Type:       t,
		Definition: a.Definition,
		Default:    parseDefault(t, a.Default),
		Access:     access,
		Required:   required,
	}, true
}

func compileCommand(cr *compileResult, path string, role Role, c CommandEntry) (CommandDef, bool) {
	id, err := parseHex8(c.ID)
	if err != nil {
		cr.addf("%s._id: %v", path, err)
		return CommandDef{}, false
	}
	if strings.TrimSpace(c.Name) == "" {
		cr.addf("%s._name: required", path)
		return CommandDef{}, false
	}
	required, err := parseFlag(c.Required)
	if err != nil {
		cr.addf("%s._required: %v", path, err)
		return CommandDef{}, false
	}
	return CommandDef{
		ID:         id,
		Name:       c.Name,
		Direction:  role.Direction(),
		Definition: c.Definition,
		Required:   required,
		Callback:   c.Callback,
	}, true
}

func dupAttr(r Role, id uint16) string {
	return fmt.Sprintf("duplicate %s attribute id 0x%04X", r, id)
}

func dupCmd(r Role, id uint8) string {
	return fmt.Sprintf("duplicate %s command id 0x%02X", r, id)
}

func parseHex16(s string) (uint16, error) {
	v, err := parseHexID(s, 16)
	return uint16(v), err
}

func parseHex8(s string) (uint8, error) {
	v, err := parseHexID(s, 8)
	return uint8(v), err
}

func parseHexID(s string, bits int) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("required")
	}
	if !hasHexPrefix(s) {
		return 0, fmt.Errorf("%q is not a 0x-prefixed id", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, bits)
	if err != nil {
		return 0, fmt.Errorf("%q does not fit %d bits", s, bits)
	}
	return v, nil
}

// parseFlag reads the string booleans of the stack tables. A missing flag is false.
func parseFlag(s string) (bool, error) {
	switch s {
	case "", "false":
		return false, nil
	case "true":
		return true, nil
	}
	return false, fmt.Errorf("%q is not \"true\" or \"false\"", s)
}

func formatHex16(v uint16) string {
	return fmt.Sprintf("0x%04X", v)
}

func formatHex8(v uint8) string {
	return fmt.Sprintf("0x%02X", v)
}

func formatFlag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
