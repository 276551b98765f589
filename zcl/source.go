package zcl

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed standard/*.json
var standardFS embed.FS

// Source supplies catalogue documents to Load.
type Source interface {
	// Name identifies the source in errors and logs.
	Name() string
	// Documents reads and decodes every document of the source.
	Documents() ([]NamedDocument, error)
}

// NamedDocument is a decoded document and where it came from.
type NamedDocument struct {
	Name     string
	Document *Document
}

type bytesSource struct {
	name   string
	data   []byte
	decode func(name string, data []byte) (*Document, error)
}

func (s *bytesSource) Name() string { return s.name }

func (s *bytesSource) Documents() ([]NamedDocument, error) {
	doc, err := s.decode(s.name, s.data)
	if err != nil {
		return nil, err
	}
	return []NamedDocument{{Name: s.name, Document: doc}}, nil
}

// JSONSource reads one JSON document from memory.
func JSONSource(name string, data []byte) Source {
	return &bytesSource{name: name, data: data, decode: decodeJSON}
}

// YAMLSource reads one YAML document from memory.
func YAMLSource(name string, data []byte) Source {
	return &bytesSource{name: name, data: data, decode: decodeYAML}
}

// DocumentSource wraps an already decoded document.
func DocumentSource(name string, doc *Document) Source {
	return documentSource{name: name, doc: doc}
}

type documentSource struct {
	name string
	doc  *Document
}

func (s documentSource) Name() string { return s.name }

func (s documentSource) Documents() ([]NamedDocument, error) {
	if s.doc == nil {
		return nil, invalid(s.name, "", "nil document")
	}
	return []NamedDocument{{Name: s.name, Document: s.doc}}, nil
}

// FileSource reads a .json, .yaml or .yml file.
func FileSource(path string) Source {
	return fileSource(path)
}

type fileSource string

func (s fileSource) Name() string { return string(s) }

func (s fileSource) Documents() ([]NamedDocument, error) {
	path := string(s)
	decode, err := decoderFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := decode(path, data)
	if err != nil {
		return nil, err
	}
	return []NamedDocument{{Name: path, Document: doc}}, nil
}

// DirSource reads every *.json, *.yaml and *.yml file of a directory in
// lexical order. A missing or empty directory yields no documents.
func DirSource(dir string) Source {
	return dirSource(dir)
}

type dirSource string

func (s dirSource) Name() string { return string(s) }

func (s dirSource) Documents() ([]NamedDocument, error) {
	dir := string(s)
	var matches []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", dir, err)
		}
		matches = append(matches, m...)
	}
	sort.Strings(matches)

	docs := make([]NamedDocument, 0, len(matches))
	for _, path := range matches {
		nd, err := fileSource(path).Documents()
		if err != nil {
			return nil, err
		}
		docs = append(docs, nd...)
	}
	return docs, nil
}

// StandardSource returns the catalogue embedded in the package.
func StandardSource() Source {
	return standardSource{}
}

type standardSource struct{}

func (standardSource) Name() string { return "standard" }

func (standardSource) Documents() ([]NamedDocument, error) {
	entries, err := standardFS.ReadDir("standard")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalogue: %w", err)
	}
	docs := make([]NamedDocument, 0, len(entries))
	for _, e := range entries {
		name := "standard/" + e.Name()
		data, err := standardFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", name, err)
		}
		doc, err := decodeJSON(name, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, NamedDocument{Name: name, Document: doc})
	}
	return docs, nil
}

func decoderFor(path string) (func(string, []byte) (*Document, error), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSON, nil
	case ".yaml", ".yml":
		return decodeYAML, nil
	}
	return nil, invalid(path, "", "unsupported document extension %q", filepath.Ext(path))
}

func decodeJSON(name string, data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, invalid(name, "", "parse json: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid(name, "", "parse json: trailing data after document")
	}
	return &doc, nil
}

// decodeYAML decodes into the same struct as JSON. Scalars land in string
// fields verbatim, so unquoted ids such as 0x0006 keep their spelling.
func decodeYAML(name string, data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid(name, "", "empty document")
		}
		return nil, invalid(name, "", "parse yaml: %v", err)
	}
	return &doc, nil
}
