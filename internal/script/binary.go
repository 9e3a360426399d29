package script

import (
	"errors"
	"fmt"

	"github.com/dshills/plcore/internal/logging"
	"github.com/dshills/plcore/internal/rtti"
	lua "github.com/yuin/gopher-lua"
)

// Entry points a Lua plugin binary defines.
const (
	fnIsDebugBuild    = "PLIsDebugBuild"
	fnPluginInfo      = "PLGetPluginInfo"
	fnRegisterClasses = "PLRegisterClasses"
	varModuleInfo     = "PLModuleInfo"
)

// NewOpener returns an opener for Lua plugin binaries. Each binary runs in
// its own state; print output goes to log tagged with the file name.
func NewOpener(log *logging.Logger, opts ...StateOption) rtti.Opener {
	if log == nil {
		log = logging.Nop()
	}
	return func(path string) (rtti.Binary, error) {
		return Open(path, log, opts...)
	}
}

// Binary is a Lua plugin binary.
type Binary struct {
	path  string
	state *State
}

// Open runs the script at path and returns it as a plugin binary.
func Open(path string, log *logging.Logger, opts ...StateOption) (*Binary, error) {
	if log == nil {
		log = logging.Nop()
	}
	opts = append([]StateOption{WithStateLogger(log.WithField("script", path))}, opts...)
	s := NewState(opts...)
	if err := s.DoFile(path); err != nil {
		s.Close()
		return nil, fmt.Errorf("run %s: %w", path, err)
	}
	return &Binary{path: path, state: s}, nil
}

// State returns the Lua state of the binary.
func (b *Binary) State() *State {
	return b.state
}

// Path returns the script path.
func (b *Binary) Path() string {
	return b.path
}

// IsDebugBuild calls PLIsDebugBuild.
func (b *Binary) IsDebugBuild() (bool, bool) {
	if !b.state.HasFunction(fnIsDebugBuild) {
		return false, false
	}
	ret, err := b.state.Call(fnIsDebugBuild)
	if err != nil || len(ret) == 0 {
		return false, false
	}
	return lua.LVAsBool(ret[0]), true
}

// PluginInfo calls PLGetPluginInfo.
func (b *Binary) PluginInfo() (int, bool) {
	if !b.state.HasFunction(fnPluginInfo) {
		return 0, false
	}
	ret, err := b.state.Call(fnPluginInfo)
	if err != nil || len(ret) == 0 {
		return 0, false
	}
	n, ok := ret[0].(lua.LNumber)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// ModuleInfo reads the PLModuleInfo table.
func (b *Binary) ModuleInfo() (name, vendor, license, description string) {
	t, ok := b.state.GetGlobal(varModuleInfo).(*lua.LTable)
	if !ok {
		return "", "", "", ""
	}
	field := func(key string) string {
		if s, ok := t.RawGetString(key).(lua.LString); ok {
			return string(s)
		}
		return ""
	}
	return field("name"), field("vendor"), field("license"), field("description")
}

// Classes calls PLRegisterClasses with a registrar whose class method
// declares one class per call.
func (b *Binary) Classes() ([]rtti.Descriptor, error) {
	if !b.state.HasFunction(fnRegisterClasses) {
		return nil, nil
	}
	c := &collector{state: b.state}
	reg := b.state.L.NewTable()
	reg.RawSetString("class", b.state.L.NewFunction(c.class))

	if _, err := b.state.Call(fnRegisterClasses, reg); err != nil {
		if c.err != nil {
			return nil, c.err
		}
		return nil, fmt.Errorf("%s: %w", fnRegisterClasses, err)
	}
	return c.classes, nil
}

// Close releases the Lua state.
func (b *Binary) Close() error {
	return b.state.Close()
}

type collector struct {
	state   *State
	classes []rtti.Descriptor
	err     error
}

func (c *collector) fail(L *lua.LState, format string, args ...any) int {
	c.err = fmt.Errorf("%w: %s", ErrInvalidClass, fmt.Sprintf(format, args...))
	L.RaiseError("%v", c.err)
	return 0
}

// class implements reg:class{...}.
func (c *collector) class(L *lua.LState) int {
	decl := L.CheckTable(2)

	info := rtti.ClassInfo{
		Namespace:     stringField(decl, "namespace"),
		Name:          stringField(decl, "name"),
		BaseClassName: stringField(decl, "base"),
		Description:   stringField(decl, "description"),
		Properties:    map[string]string{},
	}
	if info.Name == "" {
		return c.fail(L, "class without name")
	}
	full := rtti.FullName(info.Namespace, info.Name)

	if props, ok := decl.RawGetString("properties").(*lua.LTable); ok {
		props.ForEach(func(k, v lua.LValue) {
			info.Properties[k.String()] = v.String()
		})
	}

	var members []rtti.Member
	var err error
	each(decl, "attributes", func(t *lua.LTable) {
		if err != nil {
			return
		}
		var a *rtti.Attribute
		a, err = c.attribute(t)
		if a != nil {
			members = append(members, a)
		}
	})
	each(decl, "methods", func(t *lua.LTable) {
		if err != nil {
			return
		}
		var name, sig string
		name, sig, err = declaration(t)
		if err == nil {
			members = append(members, rtti.NewMethod(name, sig, c.memberFunc(t), stringField(t, "description")))
		}
	})
	each(decl, "slots", func(t *lua.LTable) {
		if err != nil {
			return
		}
		var name, sig string
		name, sig, err = declaration(t)
		if err == nil {
			members = append(members, rtti.NewSlot(name, sig, c.memberFunc(t), stringField(t, "description")))
		}
	})
	each(decl, "signals", func(t *lua.LTable) {
		if err != nil {
			return
		}
		var name, sig string
		name, sig, err = declaration(t)
		if err == nil {
			members = append(members, rtti.NewSignal(name, sig, stringField(t, "description")))
		}
	})
	each(decl, "constructors", func(t *lua.LTable) {
		if err != nil {
			return
		}
		var name, sig string
		name, sig, err = declaration(t)
		if err == nil {
			members = append(members, rtti.NewConstructor(name, sig, c.constructorFunc(t), stringField(t, "description")))
		}
	})
	if err != nil {
		return c.fail(L, "%s: %v", full, err)
	}

	c.classes = append(c.classes, rtti.NewRealDescriptor(info, members...))
	return 0
}

func (c *collector) attribute(t *lua.LTable) (*rtti.Attribute, error) {
	name := stringField(t, "name")
	if name == "" {
		return nil, errors.New("attribute without name")
	}
	typ := stringField(t, "type")
	if typ == "" {
		typ = rtti.TypeVar
	}
	def := ToGoValue(t.RawGetString("default"))
	if def == nil {
		def = zeroOf(typ)
	}
	if typ == rtti.TypeFloat {
		if n, ok := def.(int); ok {
			def = float64(n)
		}
	}
	a := rtti.NewAttribute(name, typ, def, stringField(t, "description"))
	if !a.Accepts(def) {
		return nil, fmt.Errorf("attribute %s: default %v is not %s", name, def, typ)
	}
	return a, nil
}

func zeroOf(typ string) any {
	switch typ {
	case rtti.TypeInt:
		return 0
	case rtti.TypeFloat:
		return 0.0
	case rtti.TypeString:
		return ""
	case rtti.TypeBool:
		return false
	default:
		return nil
	}
}

func declaration(t *lua.LTable) (name, sig string, err error) {
	name = stringField(t, "name")
	if name == "" {
		return "", "", errors.New("member without name")
	}
	sig = stringField(t, "signature")
	if _, err := rtti.ParseSignature(sig); err != nil {
		return "", "", fmt.Errorf("%s: %w", name, err)
	}
	return name, sig, nil
}

// memberFunc binds the fn field of a method or slot declaration.
func (c *collector) memberFunc(t *lua.LTable) rtti.Func {
	fn, ok := t.RawGetString("fn").(*lua.LFunction)
	if !ok {
		return nil
	}
	s := c.state
	return func(obj rtti.Object, params rtti.Params) (any, error) {
		args := make([]lua.LValue, 0, len(params)+1)
		args = append(args, NewObject(s.L, obj))
		for _, p := range params {
			args = append(args, ToLuaValue(s.L, p))
		}
		ret, err := s.CallFunction(fn, args...)
		if err != nil {
			return nil, err
		}
		if len(ret) == 0 {
			return nil, nil
		}
		return ToGoValue(ret[0]), nil
	}
}

// constructorFunc creates an Instance and runs the optional fn initializer
// on it with the constructor parameters.
func (c *collector) constructorFunc(t *lua.LTable) rtti.ConstructorFunc {
	fn, _ := t.RawGetString("fn").(*lua.LFunction)
	s := c.state
	return func(class *rtti.Class, params rtti.Params) (rtti.Object, error) {
		obj := rtti.NewInstance(class)
		if fn == nil {
			return obj, nil
		}
		args := make([]lua.LValue, 0, len(params)+1)
		args = append(args, NewObject(s.L, obj))
		for _, p := range params {
			args = append(args, ToLuaValue(s.L, p))
		}
		if _, err := s.CallFunction(fn, args...); err != nil {
			return nil, fmt.Errorf("construct %s: %w", class.FullName(), err)
		}
		return obj, nil
	}
}

func stringField(t *lua.LTable, key string) string {
	switch v := t.RawGetString(key).(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return v.String()
	default:
		return ""
	}
}

// each calls fn for every table in the list field key.
func each(t *lua.LTable, key string, fn func(*lua.LTable)) {
	list, ok := t.RawGetString(key).(*lua.LTable)
	if !ok {
		return
	}
	for i := 1; i <= list.Len(); i++ {
		if item, ok := list.RawGetInt(i).(*lua.LTable); ok {
			fn(item)
		}
	}
}
