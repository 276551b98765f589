package zcl

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/Masterminds/semver/v3"
	"github.com/gowebpki/jcs"
)

// DefaultVersionConstraint is the range of document versions Load accepts
// unless WithVersionConstraint says otherwise.
const DefaultVersionConstraint = ">= 1.0.0, < 2.0.0"

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	logger            *slog.Logger
	strictDefaults    bool
	versionConstraint string
}

// WithLogger sets the logger used while loading.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

// WithStrictDefaults turns defaults that need review into load failures.
func WithStrictDefaults(strict bool) Option {
	return func(o *loadOptions) {
		o.strictDefaults = strict
	}
}

// WithVersionConstraint sets the semver range documents must declare.
func WithVersionConstraint(constraint string) Option {
	return func(o *loadOptions) {
		o.versionConstraint = constraint
	}
}

// Registry is the composition of the catalogue and both schemas. It is a
// value: once Load returns it never changes and may be shared by any number
// of goroutines without synchronisation.
type Registry struct {
	catalog     *Catalog
	attrs       *AttributeSchema
	cmds        *CommandSchema
	groups      []*CallbackGroup
	byDigest    map[string]*CallbackGroup
	reviews     []DefaultReview
	version     string
	fingerprint string
}

// Load builds a registry from sources. Later sources overlay earlier ones: a
// cluster id seen before contributes new attributes and commands only.
// Loading is atomic; on any problem no registry is returned.
func Load(sources []Source, opts ...Option) (*Registry, error) {
	o := loadOptions{
		logger:            slog.Default(),
		versionConstraint: DefaultVersionConstraint,
	}
	for _, opt := range opts {
		opt(&o)
	}

	constraint, err := semver.NewConstraint(o.versionConstraint)
	if err != nil {
		return nil, fmt.Errorf("zcl: version constraint %q: %w", o.versionConstraint, err)
	}

	var (
		pending  []pendingCluster
		index    = make(map[uint16]int)
		reviews  []DefaultReview
		problems []string
		version  *semver.Version
	)

	for _, src := range sources {
		docs, err := src.Documents()
		if err != nil {
			if errors.Is(err, ErrValidation) {
				return nil, err
			}
			return nil, fmt.Errorf("zcl: load %s: %w", src.Name(), err)
		}

		for _, nd := range docs {
			v, err := checkVersion(nd.Name, nd.Document.Version, constraint)
			if err != nil {
				return nil, err
			}
			if v != nil && (version == nil || v.GreaterThan(version)) {
				version = v
			}
			if err := validateDocument(nd.Name, nd.Document); err != nil {
				return nil, err
			}

			cr := compileDocument(nd.Name, nd.Document)
			for _, p := range cr.problems {
				problems = append(problems, nd.Name+": "+p)
			}
			reviews = append(reviews, cr.reviews...)

			for _, pc := range cr.clusters {
				i, exists := index[pc.def.ID]
				if !exists {
					index[pc.def.ID] = len(pending)
					pending = append(pending, pc)
					o.logger.Debug("cluster registered", "id", fmt.Sprintf("0x%04X", pc.def.ID), "name", pc.def.Name, "source", nd.Name)
					continue
				}

				base := &pending[i]
				if base.def.Name != pc.def.Name {
					problems = append(problems, fmt.Sprintf("%s: overlay of cluster 0x%04X renames %q to %q", nd.Name, pc.def.ID, base.def.Name, pc.def.Name))
					continue
				}
				for _, p := range base.def.merge(&pc.def) {
					problems = append(problems, fmt.Sprintf("%s: overlay of cluster 0x%04X: %s", nd.Name, pc.def.ID, p))
				}
				if pc.callbacks != nil {
					switch {
					case base.callbacks == nil:
						base.callbacks = pc.callbacks
					case !reflect.DeepEqual(base.callbacks.Callbacks, pc.callbacks.Callbacks):
						problems = append(problems, fmt.Sprintf("%s: overlay of cluster 0x%04X: conflicting appcallback block", nd.Name, pc.def.ID))
					case pc.callbacks.Group != "" && pc.callbacks.Group != base.callbacks.Group:
						o.logger.Debug("overlay appcallback group name ignored",
							"id", fmt.Sprintf("0x%04X", pc.def.ID), "group", pc.callbacks.Group, "kept", base.callbacks.Group, "source", nd.Name)
					}
				}
				o.logger.Debug("cluster merged", "id", fmt.Sprintf("0x%04X", pc.def.ID), "name", base.def.Name, "source", nd.Name)
			}
		}
	}

	for _, rv := range reviews {
		o.logger.Debug("attribute default needs review",
			"cluster", fmt.Sprintf("0x%04X", rv.ClusterID), "role", rv.Role,
			"attribute", fmt.Sprintf("0x%04X", rv.AttributeID), "raw", rv.Raw, "reason", rv.Reason)
		if o.strictDefaults {
			problems = append(problems, fmt.Sprintf("cluster 0x%04X %s attribute 0x%04X: default %q: %s",
				rv.ClusterID, rv.Role, rv.AttributeID, rv.Raw, rv.Reason))
		}
	}

	groups := newGroupIndex(o.logger)
	defs := make([]*ClusterDef, 0, len(pending))
	for i := range pending {
		def := pending[i].def
		if block := pending[i].callbacks; block != nil {
			g, err := groups.add(def.ID, def.Name, block)
			if err != nil {
				problems = append(problems, fmt.Sprintf("cluster 0x%04X appcallback: %v", def.ID, err))
				continue
			}
			def.CallbackGroup = g.Digest
			bindHints(&def, g)
		}
		defs = append(defs, &def)
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	catalog, err := newCatalog(defs)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		catalog:  catalog,
		attrs:    &AttributeSchema{catalog: catalog},
		cmds:     &CommandSchema{catalog: catalog},
		groups:   groups.groups,
		byDigest: groups.byDigest,
		reviews:  reviews,
	}
	if version != nil {
		r.version = version.Original()
	}
	if r.fingerprint, err = fingerprint(r.Document()); err != nil {
		return nil, err
	}

	if len(reviews) > 0 {
		o.logger.Warn("attribute defaults need manual review", "count", len(reviews))
	}
	o.logger.Info("ZCL registry loaded",
		"clusters", catalog.Len(), "callback_groups", len(r.groups), "version", r.version, "fingerprint", r.fingerprint)
	return r, nil
}

// LoadDocument is Load for a single in-memory document.
func LoadDocument(doc *Document, opts ...Option) (*Registry, error) {
	return Load([]Source{DocumentSource("document", doc)}, opts...)
}

// Standard loads the embedded catalogue.
func Standard(opts ...Option) (*Registry, error) {
	return Load([]Source{StandardSource()}, opts...)
}

func checkVersion(source, v string, c *semver.Constraints) (*semver.Version, error) {
	if v == "" {
		return nil, nil
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return nil, invalid(source, "_version", "%q is not a semantic version: %v", v, err)
	}
	if !c.Check(sv) {
		return nil, invalid(source, "_version", "%s does not satisfy %s", v, c.String())
	}
	return sv, nil
}

func fingerprint(doc *Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("zcl: marshal document: %w", err)
	}
	canon, err := jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("zcl: canonicalize document: %w", err)
	}
	sum := sha256.Sum256(canon)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// Catalog returns the cluster catalogue.
func (r *Registry) Catalog() *Catalog { return r.catalog }

// Attributes returns the attribute schema.
func (r *Registry) Attributes() *AttributeSchema { return r.attrs }

// Commands returns the command schema.
func (r *Registry) Commands() *CommandSchema { return r.cmds }

// Version returns the highest document version loaded, or "".
func (r *Registry) Version() string { return r.version }

// Fingerprint is the sha256 of the canonical JSON of Document. Registries
// with equal fingerprints answer every lookup identically.
func (r *Registry) Fingerprint() string { return r.fingerprint }

// Reviews lists attribute defaults that could not be canonicalised.
func (r *Registry) Reviews() []DefaultReview {
	return append([]DefaultReview(nil), r.reviews...)
}

// CallbackGroups returns the de-duplicated callback groups in first-seen order.
func (r *Registry) CallbackGroups() []CallbackGroup {
	result := make([]CallbackGroup, 0, len(r.groups))
	for _, g := range r.groups {
		result = append(result, g.clone())
	}
	return result
}

// CallbackGroup returns the group a cluster belongs to.
func (r *Registry) CallbackGroup(clusterID uint16) (CallbackGroup, error) {
	c, err := r.catalog.lookup(clusterID)
	if err != nil {
		return CallbackGroup{}, err
	}
	g, ok := r.byDigest[c.CallbackGroup]
	if !ok {
		return CallbackGroup{}, &NotFoundError{Kind: KindCallbacks, ClusterID: clusterID}
	}
	return g.clone(), nil
}

func (g *CallbackGroup) clone() CallbackGroup {
	cp := *g
	cp.Callbacks = append([]CallbackDef(nil), g.Callbacks...)
	cp.Clusters = append([]uint16(nil), g.Clusters...)
	cp.byName = make(map[string]*CallbackDef, len(cp.Callbacks))
	for i := range cp.Callbacks {
		if _, dup := cp.byName[cp.Callbacks[i].Name]; !dup {
			cp.byName[cp.Callbacks[i].Name] = &cp.Callbacks[i]
		}
	}
	return cp
}

// Document serialises the registry back to the catalogue format. Loading
// the result yields a registry with the same Fingerprint.
func (r *Registry) Document() *Document {
	doc := &Document{
		Version:  r.version,
		Clusters: make([]ClusterEntry, 0, r.catalog.Len()),
	}
	for _, c := range r.catalog.clusters {
		e := ClusterEntry{
			ID:                 formatHex16(c.ID),
			Name:               c.Name,
			Definition:         c.Definition,
			PrimaryTransaction: c.PrimaryTransaction,
			Class:              c.Class,
			Flag:               c.Flag,
			Location:           c.Location,
			Server:             roleEntry(c.ID, c.Server),
			Client:             roleEntry(c.ID, c.Client),
		}
		if g, ok := r.byDigest[c.CallbackGroup]; ok {
			e.AppCallback = g.entry()
		}
		doc.Clusters = append(doc.Clusters, e)
	}
	return doc
}

func roleEntry(clusterID uint16, rd *RoleDef) *RoleEntry {
	if rd == nil {
		return nil
	}
	re := &RoleEntry{}
	for i := range rd.Attributes {
		a := &rd.Attributes[i]
		re.Attributes = append(re.Attributes, AttributeEntry{
			ID:         formatHex16(a.ID),
			Name:       a.Name,
			Type:       string(a.Type),
			Default:    a.Default.Raw,
			Readable:   formatFlag(a.IsReadable()),
			Writable:   formatFlag(a.IsWritable()),
			Reportable: formatFlag(a.IsReportable()),
			Required:   formatFlag(a.Required),
			Definition: a.Definition,
			ClusterID:  formatHex16(clusterID),
		})
	}
	for _, cmd := range rd.Commands {
		re.Commands = append(re.Commands, CommandEntry{
			ID:         formatHex8(cmd.ID),
			Name:       cmd.Name,
			Definition: cmd.Definition,
			Required:   formatFlag(cmd.Required),
			Callback:   cmd.Callback,
		})
	}
	return re
}
