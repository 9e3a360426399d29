package script

import (
	"reflect"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestToGoValue(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(`
		list = {1, 2.5, "x"}
		map = {a = 1, b = true}
		empty = {}
	`); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   lua.LValue
		want any
	}{
		{"nil", lua.LNil, nil},
		{"bool", lua.LTrue, true},
		{"integer", lua.LNumber(3), 3},
		{"float", lua.LNumber(2.5), 2.5},
		{"string", lua.LString("s"), "s"},
		{"list", L.GetGlobal("list"), []any{1, 2.5, "x"}},
		{"map", L.GetGlobal("map"), map[string]any{"a": 1, "b": true}},
		{"empty table", L.GetGlobal("empty"), map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToGoValue(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToGoValue = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestToLuaValueRoundTrip(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	in := map[string]any{
		"n":    7,
		"f":    1.5,
		"s":    "text",
		"b":    false,
		"list": []any{"a", "b"},
	}
	got := ToGoValue(ToLuaValue(L, in))
	if !reflect.DeepEqual(got, in) {
		t.Errorf("round trip = %#v, want %#v", got, in)
	}
}
