package zcl

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const overlayYAML = `
_version: 1.1.0
cluster:
  - _id: 0x0006
    _name: OnOff
    server:
      attribute:
        - _id: 0x4002
          _name: OffWaitTime
          _type: uint16
          _default: 0x0000
          _readable: true
          _writable: true
          _clusterID: 0x0006
  - _id: 0xFC00
    _name: VendorSpecific
    server:
      attribute:
        - _id: 0x0000
          _name: Mode
          _type: VendorMode
          _default: 0x01
      command:
        - _id: 0x00
          _name: Calibrate
          _required: false
`

func TestYAMLSourceKeepsLiteralSpelling(t *testing.T) {
	docs, err := YAMLSource("overlay.yaml", []byte(overlayYAML)).Documents()
	if err != nil {
		t.Fatal(err)
	}
	doc := docs[0].Document
	if doc.Version != "1.1.0" {
		t.Errorf("version = %q", doc.Version)
	}
	a := doc.Clusters[0].Server.Attributes[0]
	if a.ID != "0x4002" || a.Default != "0x0000" || a.Readable != "true" || a.ClusterID != "0x0006" {
		t.Errorf("attribute = %+v", a)
	}
}

func TestYAMLOverlayOnJSON(t *testing.T) {
	r, err := Load([]Source{
		JSONSource("base.json", []byte(fixtureJSON)),
		YAMLSource("overlay.yaml", []byte(overlayYAML)),
	}, WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}

	a, err := r.Attributes().Resolve(0x0006, RoleServer, 0x4002)
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsWritable() || a.Default.Value != uint16(0) {
		t.Errorf("OffWaitTime = %+v", a)
	}

	// Application-specific types load but have no width.
	mode, err := r.Attributes().Resolve(0xFC00, RoleServer, 0x0000)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Width(mode.Type); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Width(%q) err = %v", mode.Type, err)
	}
	if _, _, err := r.Attributes().Interpret(0xFC00, RoleServer, 0x0000, []byte{1}); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Interpret err = %v", err)
	}
	if !mode.Default.NeedsReview() {
		t.Error("default of an application type should need review")
	}
}

func TestYAMLRejects(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"unknown field": "cluster:\n  - _id: 0x0006\n    _name: A\n    colour: red\n",
		"not a mapping": "- 1\n- 2\n",
	}
	for name, doc := range tests {
		_, err := Load([]Source{YAMLSource(name, []byte(doc))}, WithLogger(testLogger()))
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", name, err)
		}
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "10-base.json"), fixtureJSON)
	writeFile(t, filepath.Join(dir, "20-overlay.yml"), overlayYAML)
	writeFile(t, filepath.Join(dir, "README.md"), "# not a catalogue")

	docs, err := DirSource(dir).Documents()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}
	if filepath.Base(docs[0].Name) != "10-base.json" || filepath.Base(docs[1].Name) != "20-overlay.yml" {
		t.Errorf("order = %s, %s", docs[0].Name, docs[1].Name)
	}

	r, err := Load([]Source{DirSource(dir)}, WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Catalog().Has(0xFC00) || r.Version() != "1.2.0" {
		t.Errorf("dir load: has vendor = %v, version = %q", r.Catalog().Has(0xFC00), r.Version())
	}
}

func TestDirSourceMissingDir(t *testing.T) {
	docs, err := DirSource(filepath.Join(t.TempDir(), "nope")).Documents()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("documents = %d, want 0", len(docs))
	}
}

func TestDirSourceStopsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), fixtureJSON)
	writeFile(t, filepath.Join(dir, "b.json"), `{"cluster": [`)

	r, err := Load([]Source{DirSource(dir)}, WithLogger(testLogger()))
	if r != nil || !errors.Is(err, ErrValidation) {
		t.Errorf("Load = %v, %v; want nil, ErrValidation", r, err)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zcl.yaml")
	writeFile(t, path, overlayYAML)

	docs, err := FileSource(path).Documents()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Name != path {
		t.Errorf("documents = %+v", docs)
	}

	txt := filepath.Join(dir, "zcl.txt")
	writeFile(t, txt, "{}")
	if _, err := FileSource(txt).Documents(); !errors.Is(err, ErrValidation) {
		t.Errorf("unsupported extension err = %v", err)
	}

	_, err = Load([]Source{FileSource(filepath.Join(dir, "missing.json"))}, WithLogger(testLogger()))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file err = %v, want fs.ErrNotExist", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Error("an I/O failure is not a validation error")
	}
}

func TestDocumentSourceNil(t *testing.T) {
	if _, err := LoadDocument(nil); !errors.Is(err, ErrValidation) {
		t.Errorf("nil document err = %v", err)
	}
}

func TestStandardSourceNames(t *testing.T) {
	src := StandardSource()
	if src.Name() != "standard" {
		t.Errorf("name = %q", src.Name())
	}
	docs, err := src.Documents()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) == 0 {
		t.Fatal("no embedded documents")
	}
	for _, d := range docs {
		if filepath.Dir(d.Name) != "standard" {
			t.Errorf("embedded document name = %q", d.Name)
		}
	}
}
