package zcl

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gowebpki/jcs"
)

// CallbackGroup is a callback list shared by every cluster that declared an
// identical appcallback block.
type CallbackGroup struct {
	Name      string        `json:"name"`
	Digest    string        `json:"digest"`
	Callbacks []CallbackDef `json:"callbacks"`
	Clusters  []uint16      `json:"clusters"`

	byName map[string]*CallbackDef
}

// Callback returns the named callback of the group, or nil.
func (g *CallbackGroup) Callback(name string) *CallbackDef {
	return g.byName[name]
}

// callbackDigest hashes the canonical (RFC 8785) JSON of a callback list so
// blocks that differ only in formatting collapse together.
func callbackDigest(entries []CallbackEntry) (string, error) {
	if entries == nil {
		entries = []CallbackEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal callbacks: %w", err)
	}
	canon, err := jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("canonicalize callbacks: %w", err)
	}
	sum := sha256.Sum256(canon)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// groupIndex folds appcallback blocks into shared groups, in first-seen order.
type groupIndex struct {
	groups   []*CallbackGroup
	byDigest map[string]*CallbackGroup
	logger   *slog.Logger
}

func newGroupIndex(logger *slog.Logger) *groupIndex {
	return &groupIndex{byDigest: make(map[string]*CallbackGroup), logger: logger}
}

// add registers a cluster's block and returns the group it belongs to.
func (gi *groupIndex) add(clusterID uint16, clusterName string, block *AppCallbackEntry) (*CallbackGroup, error) {
	digest, err := callbackDigest(block.Callbacks)
	if err != nil {
		return nil, err
	}
	if g, ok := gi.byDigest[digest]; ok {
		g.Clusters = append(g.Clusters, clusterID)
		if block.Group != "" && block.Group != g.Name {
			gi.logger.Debug("callback group name folded into identical group",
				"id", fmt.Sprintf("0x%04X", clusterID), "group", block.Group, "into", g.Name)
		}
		return g, nil
	}

	name := block.Group
	if name == "" {
		name = clusterName
	}
	g := &CallbackGroup{
		Name:      name,
		Digest:    digest,
		Callbacks: make([]CallbackDef, len(block.Callbacks)),
		Clusters:  []uint16{clusterID},
		byName:    make(map[string]*CallbackDef, len(block.Callbacks)),
	}
	for i, cb := range block.Callbacks {
		g.Callbacks[i] = CallbackDef{Name: cb.Name, Return: cb.Return, Arguments: cb.Arguments, Doc: cb.Doc}
		if _, dup := g.byName[cb.Name]; !dup {
			g.byName[cb.Name] = &g.Callbacks[i]
		}
	}
	gi.groups = append(gi.groups, g)
	gi.byDigest[digest] = g
	return g, nil
}

// bindHints points each command's Hint at the group's callback of the same name.
func bindHints(def *ClusterDef, g *CallbackGroup) {
	for _, rd := range []*RoleDef{def.Server, def.Client} {
		if rd == nil {
			continue
		}
		for i := range rd.Commands {
			if rd.Commands[i].Callback != "" {
				rd.Commands[i].Hint = g.Callback(rd.Commands[i].Callback)
			}
		}
	}
}

func (g *CallbackGroup) entry() *AppCallbackEntry {
	block := &AppCallbackEntry{Group: g.Name, Callbacks: make([]CallbackEntry, len(g.Callbacks))}
	for i, cb := range g.Callbacks {
		block.Callbacks[i] = CallbackEntry{Name: cb.Name, Return: cb.Return, Arguments: cb.Arguments, Doc: cb.Doc}
	}
	return block
}
