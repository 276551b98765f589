// Package luazcl exposes read-only registry queries to Lua scripts as the
// global `zcl` table. Every state shares the same *zcl.Registry.
package luazcl

import (
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"zcl-registry/zcl"
)

// Register installs the `zcl` global table in L.
//
// Lookups that miss return nil plus an error message, following the Lua
// io library convention. Bad argument types raise.
func Register(L *lua.LState, r *zcl.Registry) {
	mod := L.NewTable()

	mod.RawSetString("cluster", L.NewFunction(func(L *lua.LState) int {
		return luaCluster(L, r)
	}))
	mod.RawSetString("clusters", L.NewFunction(func(L *lua.LState) int {
		return luaClusters(L, r)
	}))
	mod.RawSetString("attribute", L.NewFunction(func(L *lua.LState) int {
		return luaAttribute(L, r)
	}))
	mod.RawSetString("attributes", L.NewFunction(func(L *lua.LState) int {
		return luaAttributes(L, r)
	}))
	mod.RawSetString("command", L.NewFunction(func(L *lua.LState) int {
		return luaCommand(L, r)
	}))
	mod.RawSetString("commands", L.NewFunction(func(L *lua.LState) int {
		return luaCommands(L, r)
	}))
	mod.RawSetString("is_mandatory", L.NewFunction(func(L *lua.LState) int {
		return luaIsMandatory(L, r)
	}))
	mod.RawSetString("width", L.NewFunction(luaWidth))
	mod.RawSetString("fingerprint", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(r.Fingerprint()))
		return 1
	}))

	mod.RawSetString("VARIABLE", lua.LNumber(zcl.VariableWidth))
	mod.RawSetString("SERVER", lua.LString(zcl.RoleServer))
	mod.RawSetString("CLIENT", lua.LString(zcl.RoleClient))

	L.SetGlobal("zcl", mod)
}

// zcl.cluster(id_or_name)
func luaCluster(L *lua.LState, r *zcl.Registry) int {
	var (
		c   zcl.ClusterDef
		err error
	)
	switch v := L.CheckAny(1).(type) {
	case lua.LNumber:
		c, err = r.Catalog().ByID(checkID16(L, 1))
	case lua.LString:
		if id, ok := parseID(string(v), 16); ok {
			c, err = r.Catalog().ByID(uint16(id))
		} else {
			c, err = r.Catalog().ByName(string(v))
		}
	default:
		L.ArgError(1, "number or string expected")
		return 0
	}
	if err != nil {
		return pushError(L, err)
	}
	L.Push(clusterTable(L, &c))
	return 1
}

// zcl.clusters()
func luaClusters(L *lua.LState, r *zcl.Registry) int {
	tbl := L.NewTable()
	for i, c := range r.Catalog().All() {
		tbl.RawSetInt(i+1, clusterTable(L, &c))
	}
	L.Push(tbl)
	return 1
}

// zcl.attribute(cluster, role, attr)
func luaAttribute(L *lua.LState, r *zcl.Registry) int {
	a, err := r.Attributes().Resolve(checkID16(L, 1), checkRole(L, 2), checkID16(L, 3))
	if err != nil {
		return pushError(L, err)
	}
	L.Push(attributeTable(L, &a))
	return 1
}

// zcl.attributes(cluster, role)
func luaAttributes(L *lua.LState, r *zcl.Registry) int {
	attrs, err := r.Attributes().ListFor(checkID16(L, 1), checkRole(L, 2))
	if err != nil {
		return pushError(L, err)
	}
	tbl := L.NewTable()
	for i := range attrs {
		tbl.RawSetInt(i+1, attributeTable(L, &attrs[i]))
	}
	L.Push(tbl)
	return 1
}

// zcl.command(cluster, role, cmd)
func luaCommand(L *lua.LState, r *zcl.Registry) int {
	cmd, err := r.Commands().Resolve(checkID16(L, 1), checkRole(L, 2), checkID8(L, 3))
	if err != nil {
		return pushError(L, err)
	}
	L.Push(commandTable(L, &cmd))
	return 1
}

// zcl.commands(cluster, role)
func luaCommands(L *lua.LState, r *zcl.Registry) int {
	cmds, err := r.Commands().ListFor(checkID16(L, 1), checkRole(L, 2))
	if err != nil {
		return pushError(L, err)
	}
	tbl := L.NewTable()
	for i := range cmds {
		tbl.RawSetInt(i+1, commandTable(L, &cmds[i]))
	}
	L.Push(tbl)
	return 1
}

// zcl.is_mandatory(cluster, role, cmd)
func luaIsMandatory(L *lua.LState, r *zcl.Registry) int {
	ok, err := r.Commands().IsMandatory(checkID16(L, 1), checkRole(L, 2), checkID8(L, 3))
	if err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

// zcl.width(type)
func luaWidth(L *lua.LState) int {
	w, err := zcl.Width(zcl.DataType(L.CheckString(1)))
	if err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LNumber(w))
	return 1
}

func pushError(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	L.Push(lua.LNumber(zcl.StatusFor(err)))
	return 3
}

func clusterTable(L *lua.LState, c *zcl.ClusterDef) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(c.ID))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("definition", lua.LString(c.Definition))
	t.RawSetString("class", lua.LString(c.Class))
	t.RawSetString("has_server", lua.LBool(c.Server != nil))
	t.RawSetString("has_client", lua.LBool(c.Client != nil))
	return t
}

func attributeTable(L *lua.LState, a *zcl.AttributeDef) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(a.ID))
	t.RawSetString("name", lua.LString(a.Name))
	t.RawSetString("type", lua.LString(a.Type))
	t.RawSetString("readable", lua.LBool(a.IsReadable()))
	t.RawSetString("writable", lua.LBool(a.IsWritable()))
	t.RawSetString("reportable", lua.LBool(a.IsReportable()))
	t.RawSetString("required", lua.LBool(a.Required))
	t.RawSetString("global", lua.LBool(a.IsGlobal()))
	if a.Default.IsSet() {
		t.RawSetString("default", lua.LString(a.Default.Raw))
	}
	return t
}

func commandTable(L *lua.LState, c *zcl.CommandDef) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(c.ID))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("direction", lua.LString(c.Direction))
	t.RawSetString("required", lua.LBool(c.Required))
	if c.Callback != "" {
		t.RawSetString("callback", lua.LString(c.Callback))
	}
	return t
}

func checkRole(L *lua.LState, n int) zcl.Role {
	role := zcl.Role(L.CheckString(n))
	if !role.Valid() {
		L.ArgError(n, "role must be \"server\" or \"client\"")
	}
	return role
}

func checkID16(L *lua.LState, n int) uint16 {
	return uint16(checkID(L, n, 16))
}

func checkID8(L *lua.LState, n int) uint8 {
	return uint8(checkID(L, n, 8))
}

// checkID accepts a Lua number or a "0x" string.
func checkID(L *lua.LState, n int, bits int) uint64 {
	limit := uint64(1)<<uint(bits) - 1
	switch v := L.CheckAny(n).(type) {
	case lua.LNumber:
		f := float64(v)
		if f < 0 || f > float64(limit) || f != float64(uint64(f)) {
			L.ArgError(n, "id out of range")
		}
		return uint64(f)
	case lua.LString:
		id, ok := parseID(string(v), bits)
		if !ok {
			L.ArgError(n, "invalid id "+strconv.Quote(string(v)))
		}
		return id
	}
	L.ArgError(n, "number or string expected")
	return 0
}

func parseID(s string, bits int) (uint64, bool) {
	if len(s) < 3 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return 0, false
	}
	v, err := strconv.ParseUint(s[2:], 16, bits)
	return v, err == nil
}
