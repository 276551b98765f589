package zcl

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

var (
	standardOnce sync.Once
	standardReg  *Registry
	standardErr  error
)

func standardRegistry(t *testing.T) *Registry {
	t.Helper()
	standardOnce.Do(func() {
		standardReg, standardErr = Standard(WithLogger(testLogger()))
	})
	if standardErr != nil {
		t.Fatalf("Standard: %v", standardErr)
	}
	return standardReg
}

func TestStandardIsMandatoryFixtures(t *testing.T) {
	r := standardRegistry(t)

	ok, err := r.Commands().IsMandatory(0x0300, RoleServer, 0x47)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("ColorControl StopMoveStep should be mandatory")
	}

	ok, err = r.Commands().IsMandatory(0x0300, RoleServer, 0x00)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("ColorControl MoveToHue should be optional")
	}

	cmd, _ := r.Commands().Resolve(0x0300, RoleServer, 0x47)
	if cmd.Name != "StopMoveStep" {
		t.Errorf("0x47 = %q, want StopMoveStep", cmd.Name)
	}
}

func TestStandardBasicManufacturerName(t *testing.T) {
	r := standardRegistry(t)

	a, err := r.Attributes().Resolve(0x0000, RoleServer, 0x0004)
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "ManufacturerName" || a.Type != DataUint8Array {
		t.Errorf("attribute = %+v", a)
	}
	w, err := r.Attributes().DecodeWidth(a.Type)
	if err != nil || w != VariableWidth {
		t.Errorf("DecodeWidth(%q) = %d, %v", a.Type, w, err)
	}
	v, n, err := r.Attributes().Interpret(0x0000, RoleServer, 0x0004, []byte{4, 'A', 'c', 'm', 'e'})
	if err != nil {
		t.Fatal(err)
	}
	if v != "Acme" || n != 5 {
		t.Errorf("Interpret = %v (%d bytes)", v, n)
	}
}

func TestStandardBallastClientRoleIsEmpty(t *testing.T) {
	r := standardRegistry(t)

	list, err := r.Attributes().ListFor(0x0301, RoleClient)
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("ListFor(0x0301, client) = %#v, want empty non-nil", list)
	}
	globals, err := r.Attributes().Globals(0x0301, RoleClient)
	if err != nil {
		t.Fatal(err)
	}
	if len(globals) != 2 {
		t.Errorf("globals = %d, want ClusterRevision and AttributeReportingStatus", len(globals))
	}
	server, _ := r.Attributes().ListFor(0x0301, RoleServer)
	if len(server) == 0 {
		t.Error("BallastConfiguration server role should list attributes")
	}
}

func TestStandardCallbackGroups(t *testing.T) {
	r := standardRegistry(t)

	g, err := r.CallbackGroup(0x0006)
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != "General" {
		t.Errorf("OnOff group = %q, want General", g.Name)
	}
	want := map[uint16]bool{0x0000: true, 0x0003: true, 0x0004: true, 0x0005: true, 0x0006: true, 0x0008: true, 0x0009: true}
	members := map[uint16]bool{}
	for _, id := range g.Clusters {
		members[id] = true
	}
	for id := range want {
		if !members[id] {
			t.Errorf("cluster 0x%04X missing from the General group", id)
		}
	}

	var physical int
	for _, grp := range r.CallbackGroups() {
		physical += len(grp.Callbacks)
	}
	var declared int
	for _, c := range r.Catalog().All() {
		if grp, err := r.CallbackGroup(c.ID); err == nil {
			declared += len(grp.Callbacks)
		}
	}
	if physical >= declared {
		t.Errorf("groups hold %d callbacks for %d declared, expected sharing", physical, declared)
	}

	// Every declared command callback resolves to a hint.
	for _, c := range r.Catalog().All() {
		for _, role := range []Role{RoleServer, RoleClient} {
			cmds, _ := r.Commands().ListFor(c.ID, role)
			for _, cmd := range cmds {
				if cmd.Callback != "" && cmd.Hint == nil {
					t.Errorf("%s %s 0x%02X callback %q has no hint", c.Name, role, cmd.ID, cmd.Callback)
				}
			}
		}
	}
}

func TestStandardByIDMatchesAll(t *testing.T) {
	r := standardRegistry(t)
	all := r.Catalog().All()
	if len(all) == 0 {
		t.Fatal("empty standard catalogue")
	}
	for _, c := range all {
		got, err := r.Catalog().ByID(c.ID)
		if err != nil {
			t.Fatalf("ByID(0x%04X): %v", c.ID, err)
		}
		if !reflect.DeepEqual(got, c) {
			t.Errorf("ByID(0x%04X) differs from All()", c.ID)
		}
	}
	if r.Version() != "1.0.0" {
		t.Errorf("version = %q", r.Version())
	}
}

func TestStandardReviews(t *testing.T) {
	r := standardRegistry(t)
	if len(r.Reviews()) == 0 {
		t.Fatal("standard catalogue should flag its ambiguous defaults")
	}
	for _, rv := range r.Reviews() {
		a, err := r.Attributes().Resolve(rv.ClusterID, rv.Role, rv.AttributeID)
		if err != nil {
			t.Fatal(err)
		}
		if !a.Default.NeedsReview() || a.Default.Raw != rv.Raw {
			t.Errorf("review %+v does not match attribute default %+v", rv, a.Default)
		}
	}

	_, err := Standard(WithLogger(testLogger()), WithStrictDefaults(true))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("strict Standard err = %v, want ErrValidation", err)
	}
}

func TestStandardRoundTrip(t *testing.T) {
	r := standardRegistry(t)
	again, err := LoadDocument(r.Document(), WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if again.Fingerprint() != r.Fingerprint() {
		t.Error("fingerprint changed across round trip")
	}
	if !reflect.DeepEqual(again.Catalog().All(), r.Catalog().All()) {
		t.Error("catalogue changed across round trip")
	}
}

func TestStandardConcurrentReads(t *testing.T) {
	r := standardRegistry(t)
	all := r.Catalog().All()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range all {
				c := all[(i+w)%len(all)]
				if _, err := r.Catalog().ByID(c.ID); err != nil {
					errs <- err
					return
				}
				if _, err := r.Attributes().ListFor(c.ID, RoleServer); err != nil {
					errs <- err
					return
				}
				if _, err := r.Commands().ListFor(c.ID, RoleClient); err != nil {
					errs <- err
					return
				}
				_ = r.Document()
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
