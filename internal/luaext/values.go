package luaext

import (
	"fmt"
	"reflect"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// toGo converts a Lua value to plain Go values. Sequences become []any,
// other tables map[string]any. Functions and cycles become nil.
func toGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	maxN, count := 0, 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			if n := int(kn); float64(n) == float64(kn) && n > 0 {
				if n > maxN {
					maxN = n
				}
				return
			}
		}
		isArray = false
	})

	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = toGoVisited(v, visited)
	})
	return m
}

// toLua converts a Go value to a Lua value. Structs become tables keyed by
// their json names.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case []any:
		t := L.CreateTable(len(val), 0)
		for i, e := range val {
			t.RawSetInt(i+1, toLua(L, e))
		}
		return t
	case []string:
		t := L.CreateTable(len(val), 0)
		for i, e := range val {
			t.RawSetInt(i+1, lua.LString(e))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(val))
		for k, e := range val {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	default:
		return reflectToLua(L, reflect.ValueOf(v))
	}
}

func reflectToLua(L *lua.LState, rv reflect.Value) lua.LValue {
	if !rv.IsValid() {
		return lua.LNil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return reflectToLua(L, rv.Elem())
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Slice, reflect.Array:
		t := L.CreateTable(rv.Len(), 0)
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, reflectToLua(L, rv.Index(i)))
		}
		return t
	case reflect.Map:
		t := L.CreateTable(0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSet(reflectToLua(L, iter.Key()), reflectToLua(L, iter.Value()))
		}
		return t
	case reflect.Struct:
		return structToTable(L, rv)
	default:
		ud := L.NewUserData()
		ud.Value = rv.Interface()
		return ud
	}
}

func structToTable(L *lua.LState, rv reflect.Value) *lua.LTable {
	t := L.NewTable()
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := field.Name
		if tag != "" {
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		t.RawSetString(name, reflectToLua(L, rv.Field(i)))
	}
	return t
}

// elements spreads a result into its items: nil is no items, a sequence
// of tables or strings is many, anything else is one.
func elements(lv lua.LValue) []lua.LValue {
	t, ok := lv.(*lua.LTable)
	if !ok {
		if lv == lua.LNil {
			return nil
		}
		return []lua.LValue{lv}
	}
	n := t.Len()
	if n == 0 {
		if isEmpty(t) {
			return []lua.LValue{}
		}
		return []lua.LValue{t}
	}
	switch t.RawGetInt(1).(type) {
	case *lua.LTable, lua.LString:
		out := make([]lua.LValue, n)
		for i := 1; i <= n; i++ {
			out[i-1] = t.RawGetInt(i)
		}
		return out
	}
	return []lua.LValue{t}
}

func isEmpty(t *lua.LTable) bool {
	k, _ := t.Next(lua.LNil)
	return k == lua.LNil
}

func typeName(lv lua.LValue) string {
	if lv == nil {
		return "nil"
	}
	return lv.Type().String()
}

func checkTable(field string, lv lua.LValue) (*lua.LTable, error) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, &ValueError{Field: field, Expected: "table", Got: typeName(lv)}
	}
	return t, nil
}

func getString(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func getInt(t *lua.LTable, key string) (int, bool) {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(n), true
	}
	return 0, false
}

func getBool(t *lua.LTable, key string) bool {
	return lua.LVAsBool(t.RawGetString(key))
}

// enumNames builds a name to value table, values counting from base.
func enumNames(L *lua.LState, base int, names ...string) *lua.LTable {
	t := L.CreateTable(0, len(names))
	for i, n := range names {
		t.RawSetString(n, lua.LNumber(base+i))
	}
	return t
}
