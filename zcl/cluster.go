package zcl

// Access flags
const (
	AccessRead   uint8 = 0x01
	AccessWrite  uint8 = 0x02
	AccessReport uint8 = 0x04
)

// Global attribute IDs present on every cluster role.
const (
	AttrClusterRevision          uint16 = 0xFFFD
	AttrAttributeReportingStatus uint16 = 0xFFFE
)

// Role selects the server or client side of a cluster.
type Role string

const (
	RoleServer Role = "server"
	RoleClient Role = "client"
)

// Valid reports whether r is one of the two roles.
func (r Role) Valid() bool {
	return r == RoleServer || r == RoleClient
}

// Direction returns the direction of the commands a role receives.
func (r Role) Direction() CommandDirection {
	if r == RoleClient {
		return DirectionToClient
	}
	return DirectionToServer
}

// CommandDirection indicates the direction of a cluster command.
type CommandDirection string

const (
	DirectionToServer CommandDirection = "toServer"
	DirectionToClient CommandDirection = "toClient"
)

// AttributeDef defines a ZCL attribute.
type AttributeDef struct {
	ID         uint16       `json:"id"`
	Name       string       `json:"name"`
	Type       DataType     `json:"type"`
	Definition string       `json:"definition,omitempty"`
	Default    DefaultValue `json:"default"`
	Access     uint8        `json:"access"` // bitmask: 1=read, 2=write, 4=reportable
	Required   bool         `json:"required"`
}

// IsReadable returns true if the attribute can be read.
func (a *AttributeDef) IsReadable() bool {
	return a.Access&AccessRead != 0
}

// IsWritable returns true if the attribute can be written.
func (a *AttributeDef) IsWritable() bool {
	return a.Access&AccessWrite != 0
}

// IsReportable returns true if the attribute supports reporting.
func (a *AttributeDef) IsReportable() bool {
	return a.Access&AccessReport != 0
}

// IsGlobal returns true for the attributes every cluster role carries.
func (a *AttributeDef) IsGlobal() bool {
	return a.ID == AttrClusterRevision || a.ID == AttrAttributeReportingStatus
}

// CommandDef defines a cluster-specific command.
type CommandDef struct {
	ID         uint8            `json:"id"`
	Name       string           `json:"name"`
	Direction  CommandDirection `json:"direction"`
	Definition string           `json:"definition,omitempty"`
	Required   bool             `json:"required"`
	Callback   string           `json:"callback,omitempty"`

	// Hint is the native callback documentation for Callback, shared with
	// every cluster in the same callback group. Never parsed.
	Hint *CallbackDef `json:"hint,omitempty"`
}

// CallbackDef is opaque code-generation metadata for a native stack.
type CallbackDef struct {
	Name      string `json:"name"`
	Return    string `json:"return,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Doc       string `json:"doc,omitempty"`
}

// RoleDef holds one side of a cluster.
type RoleDef struct {
	Attributes []AttributeDef `json:"attributes,omitempty"`
	Commands   []CommandDef   `json:"commands,omitempty"`
}

// ClusterDef defines a ZCL cluster with its server and client roles.
// A nil role means the catalogue does not define that side at all.
type ClusterDef struct {
	ID                 uint16   `json:"id"`
	Name               string   `json:"name"`
	Definition         string   `json:"definition,omitempty"`
	Class              string   `json:"class,omitempty"`
	Flag               string   `json:"flag,omitempty"`
	PrimaryTransaction string   `json:"primary_transaction,omitempty"`
	Location           string   `json:"location,omitempty"`
	Server             *RoleDef `json:"server,omitempty"`
	Client             *RoleDef `json:"client,omitempty"`

	// CallbackGroup is the digest of the shared callback group, or empty.
	CallbackGroup string `json:"callback_group,omitempty"`
}

// Role returns the definition of one side, or nil if it is absent.
func (c *ClusterDef) Role(r Role) *RoleDef {
	switch r {
	case RoleServer:
		return c.Server
	case RoleClient:
		return c.Client
	}
	return nil
}

// FindAttribute looks up an attribute by ID within a role.
func (c *ClusterDef) FindAttribute(r Role, id uint16) *AttributeDef {
	rd := c.Role(r)
	if rd == nil {
		return nil
	}
	for i := range rd.Attributes {
		if rd.Attributes[i].ID == id {
			return &rd.Attributes[i]
		}
	}
	return nil
}

// FindCommand looks up a command by ID within a role.
func (c *ClusterDef) FindCommand(r Role, id uint8) *CommandDef {
	rd := c.Role(r)
	if rd == nil {
		return nil
	}
	for i := range rd.Commands {
		if rd.Commands[i].ID == id {
			return &rd.Commands[i]
		}
	}
	return nil
}

// DeepCopy returns a deep copy of the cluster definition.
func (c *ClusterDef) DeepCopy() *ClusterDef {
	cp := *c
	cp.Server = c.Server.deepCopy()
	cp.Client = c.Client.deepCopy()
	return &cp
}

func (r *RoleDef) deepCopy() *RoleDef {
	if r == nil {
		return nil
	}
	cp := &RoleDef{}
	if r.Attributes != nil {
		cp.Attributes = make([]AttributeDef, len(r.Attributes))
		for i, a := range r.Attributes {
			cp.Attributes[i] = a.clone()
		}
	}
	if r.Commands != nil {
		cp.Commands = make([]CommandDef, len(r.Commands))
		for i, cmd := range r.Commands {
			cp.Commands[i] = cmd.clone()
		}
	}
	return cp
}

func (a AttributeDef) clone() AttributeDef {
	if a.Default.Bytes != nil {
		a.Default.Bytes = append([]byte(nil), a.Default.Bytes...)
	}
	if b, ok := a.Default.Value.([]byte); ok {
		a.Default.Value = append([]byte(nil), b...)
	}
	return a
}

func (c CommandDef) clone() CommandDef {
	if c.Hint != nil {
		h := *c.Hint
		c.Hint = &h
	}
	return c
}

// merge adds the attributes and commands of an overlay definition. Overlays
// may extend a cluster but never redeclare an existing ID.
func (c *ClusterDef) merge(other *ClusterDef) []string {
	var problems []string
	for _, r := range []Role{RoleServer, RoleClient} {
		src := other.Role(r)
		if src == nil {
			continue
		}
		if c.Role(r) == nil {
			rd := &RoleDef{}
			if r == RoleServer {
				c.Server = rd
			} else {
				c.Client = rd
			}
		}
		dst := c.Role(r)
		for _, attr := range src.Attributes {
			if c.FindAttribute(r, attr.ID) != nil {
				problems = append(problems, dupAttr(r, attr.ID))
				continue
			}
			dst.Attributes = append(dst.Attributes, attr)
		}
		for _, cmd := range src.Commands {
			if c.FindCommand(r, cmd.ID) != nil {
				problems = append(problems, dupCmd(r, cmd.ID))
				continue
			}
			dst.Commands = append(dst.Commands, cmd)
		}
	}
	return problems
}
