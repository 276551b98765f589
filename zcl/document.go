package zcl

// Document is the serialized catalogue. Field names follow the generated
// stack tables so existing generators can produce and consume it unchanged;
// identifiers and flags stay strings ("0x0006", "true").
type Document struct {
	Version  string         `json:"_version,omitempty" yaml:"_version,omitempty"`
	Clusters []ClusterEntry `json:"cluster" yaml:"cluster"`
}

// ClusterEntry is one cluster element of a Document.
type ClusterEntry struct {
	ID                 string            `json:"_id,omitempty" yaml:"_id,omitempty"`
	Name               string            `json:"_name,omitempty" yaml:"_name,omitempty"`
	Definition         string            `json:"_definition,omitempty" yaml:"_definition,omitempty"`
	PrimaryTransaction string            `json:"_primary_transaction,omitempty" yaml:"_primary_transaction,omitempty"`
	Class              string            `json:"_class,omitempty" yaml:"_class,omitempty"`
	Flag               string            `json:"_flag,omitempty" yaml:"_flag,omitempty"`
	Location           string            `json:"_location,omitempty" yaml:"_location,omitempty"`
	Server             *RoleEntry        `json:"server,omitempty" yaml:"server,omitempty"`
	Client             *RoleEntry        `json:"client,omitempty" yaml:"client,omitempty"`
	AppCallback        *AppCallbackEntry `json:"appcallback,omitempty" yaml:"appcallback,omitempty"`
}

// RoleEntry is the server or client element of a cluster.
type RoleEntry struct {
	Attributes []AttributeEntry `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Commands   []CommandEntry   `json:"command,omitempty" yaml:"command,omitempty"`
}

// AttributeEntry is one attribute element.
type AttributeEntry struct {
	ID         string `json:"_id,omitempty" yaml:"_id,omitempty"`
	Name       string `json:"_name,omitempty" yaml:"_name,omitempty"`
	Type       string `json:"_type,omitempty" yaml:"_type,omitempty"`
	Default    string `json:"_default,omitempty" yaml:"_default,omitempty"`
	Readable   string `json:"_readable,omitempty" yaml:"_readable,omitempty"`
	Writable   string `json:"_writable,omitempty" yaml:"_writable,omitempty"`
	Reportable string `json:"_reportable,omitempty" yaml:"_reportable,omitempty"`
	Required   string `json:"_required,omitempty" yaml:"_required,omitempty"`
	Definition string `json:"_definition,omitempty" yaml:"_definition,omitempty"`
	ClusterID  string `json:"_clusterID,omitempty" yaml:"_clusterID,omitempty"`
}

// CommandEntry is one command element.
type CommandEntry struct {
	ID         string `json:"_id,omitempty" yaml:"_id,omitempty"`
	Name       string `json:"_name,omitempty" yaml:"_name,omitempty"`
	Definition string `json:"_definition,omitempty" yaml:"_definition,omitempty"`
	Required   string `json:"_required,omitempty" yaml:"_required,omitempty"`
	Callback   string `json:"_callback,omitempty" yaml:"_callback,omitempty"`
}

// AppCallbackEntry lists the native callbacks registered for a cluster.
type AppCallbackEntry struct {
	Group     string          `json:"group,omitempty" yaml:"group,omitempty"`
	Callbacks []CallbackEntry `json:"callbacks" yaml:"callbacks"`
}

// CallbackEntry is one native callback signature.
type CallbackEntry struct {
	Name      string `json:"name" yaml:"name"`
	Return    string `json:"return,omitempty" yaml:"return,omitempty"`
	Arguments string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Doc       string `json:"doc,omitempty" yaml:"doc,omitempty"`
}
