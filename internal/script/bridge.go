package script

import (
	"fmt"
	"math"
	"sort"

	"github.com/dshills/plcore/internal/rtti"
	lua "github.com/yuin/gopher-lua"
)

const objectTypeName = "plcore.object"

// Connector is implemented by objects that deliver signals to slots.
type Connector interface {
	Connect(signal string, target rtti.Object, slot string) error
	Emit(signal string, params rtti.Params) error
}

// ToGoValue converts a Lua value to a Go value.
//
// Integral numbers become int and other numbers float64. Object userdata
// becomes the wrapped rtti.Object. Tables with consecutive integer keys
// starting at 1 become []any, other tables map[string]any.
func ToGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LUserData:
		return val.Value
	case *lua.LTable:
		return tableToGo(val)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable) any {
	n := t.Len()
	if n > 0 {
		count := 0
		t.ForEach(func(lua.LValue, lua.LValue) { count++ })
		if count == n {
			out := make([]any, n)
			for i := 1; i <= n; i++ {
				out[i-1] = ToGoValue(t.RawGetInt(i))
			}
			return out
		}
	}

	out := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		out[k.String()] = ToGoValue(v)
	})
	return out
}

// ToLuaValue converts a Go value to a Lua value. rtti.Object values become
// object userdata.
func ToLuaValue(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case rtti.Object:
		return NewObject(L, val)
	case []any:
		t := L.NewTable()
		for _, item := range val {
			t.Append(ToLuaValue(L, item))
		}
		return t
	case []string:
		t := L.NewTable()
		for _, item := range val {
			t.Append(lua.LString(item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, ToLuaValue(L, val[k]))
		}
		return t
	case lua.LValue:
		return val
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

// NewObject wraps obj as userdata with the object metatable.
func NewObject(L *lua.LState, obj rtti.Object) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = obj
	L.SetMetatable(ud, objectMetatable(L))
	return ud
}

func objectMetatable(L *lua.LState) lua.LValue {
	if mt := L.GetTypeMetatable(objectTypeName); mt != lua.LNil {
		return mt
	}
	mt := L.NewTypeMetatable(objectTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"get":     objectGet,
		"set":     objectSet,
		"call":    objectCall,
		"emit":    objectEmit,
		"connect": objectConnect,
		"id":      objectID,
		"class":   objectClass,
	}))
	L.SetField(mt, "__tostring", L.NewFunction(objectToString))
	return mt
}

func checkObject(L *lua.LState, n int) rtti.Object {
	ud := L.CheckUserData(n)
	obj, ok := ud.Value.(rtti.Object)
	if !ok {
		L.ArgError(n, "object expected")
		return nil
	}
	return obj
}

func argsFrom(L *lua.LState, first int) rtti.Params {
	top := L.GetTop()
	if top < first {
		return nil
	}
	params := make(rtti.Params, 0, top-first+1)
	for i := first; i <= top; i++ {
		params = append(params, ToGoValue(L.Get(i)))
	}
	return params
}

func objectGet(L *lua.LState) int {
	obj := checkObject(L, 1)
	v, ok := obj.Attribute(L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(ToLuaValue(L, v))
	return 1
}

func objectSet(L *lua.LState) int {
	obj := checkObject(L, 1)
	if err := obj.SetAttribute(L.CheckString(2), ToGoValue(L.Get(3))); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func objectCall(L *lua.LState) int {
	obj := checkObject(L, 1)
	name := L.CheckString(2)
	result, err := obj.Class().CallMethod(obj, name, argsFrom(L, 3))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(ToLuaValue(L, result))
	return 1
}

func objectEmit(L *lua.LState) int {
	obj := checkObject(L, 1)
	c, ok := obj.(Connector)
	if !ok {
		L.RaiseError("%s objects cannot emit signals", obj.Class().FullName())
		return 0
	}
	if err := c.Emit(L.CheckString(2), argsFrom(L, 3)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func objectConnect(L *lua.LState) int {
	obj := checkObject(L, 1)
	signal := L.CheckString(2)
	target := checkObject(L, 3)
	slot := L.CheckString(4)

	c, ok := obj.(Connector)
	if !ok {
		L.RaiseError("%s objects cannot emit signals", obj.Class().FullName())
		return 0
	}
	if err := c.Connect(signal, target, slot); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func objectID(L *lua.LState) int {
	L.Push(lua.LString(checkObject(L, 1).ID().String()))
	return 1
}

func objectClass(L *lua.LState) int {
	L.Push(lua.LString(checkObject(L, 1).Class().FullName()))
	return 1
}

func objectToString(L *lua.LState) int {
	obj := checkObject(L, 1)
	L.Push(lua.LString(fmt.Sprintf("%s(%s)", obj.Class().FullName(), obj.ID())))
	return 1
}
