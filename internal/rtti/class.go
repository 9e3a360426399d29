package rtti

import "fmt"

// Class is the stable handle of a registered class.
//
// The descriptor behind a handle is replaced when a dummy class is
// promoted; the handle itself stays valid and Generation is incremented.
// Member accessors on a dummy class trigger promotion and return empty
// results when promotion fails.
type Class struct {
	desc       Descriptor
	generation uint64
}

// Descriptor returns the current descriptor.
func (c *Class) Descriptor() Descriptor { return c.desc }

// Generation returns the number of times the descriptor has been replaced.
func (c *Class) Generation() uint64 { return c.generation }

// IsDummy reports whether the class is still backed by plugin metadata only.
func (c *Class) IsDummy() bool { return c.desc.IsDummy() }

// ModuleID returns the id of the owning module.
func (c *Class) ModuleID() int { return c.desc.ModuleID() }

// Name returns the class name without namespace.
func (c *Class) Name() string { return c.desc.Name() }

// Namespace returns the class namespace.
func (c *Class) Namespace() string { return c.desc.Namespace() }

// FullName returns "Namespace::Name".
func (c *Class) FullName() string { return c.desc.FullName() }

// BaseClassName returns the full name of the base class.
func (c *Class) BaseClassName() string { return c.desc.BaseClassName() }

// Description returns the class description.
func (c *Class) Description() string { return c.desc.Description() }

// String returns the full name.
func (c *Class) String() string { return c.FullName() }

// Module returns the owning module, or nil if the class is not registered.
func (c *Class) Module() *Module {
	reg := c.desc.base().reg
	if reg == nil {
		return nil
	}
	return reg.ModuleByID(c.desc.ModuleID())
}

// BaseClass returns the handle of the base class, or nil.
func (c *Class) BaseClass() *Class {
	reg := c.desc.base().reg
	if reg == nil || c.desc.BaseClassName() == "" {
		return nil
	}
	return reg.GetClass(c.desc.BaseClassName())
}

// IsDerivedFrom reports whether name is a direct or indirect base class.
func (c *Class) IsDerivedFrom(name string) bool {
	reg := c.desc.base().reg
	if reg == nil {
		return false
	}
	return reg.isDerived(c, name)
}

// Properties returns own and inherited properties.
func (c *Class) Properties() map[string]string { return c.desc.Properties() }

// Property returns the value of a property.
func (c *Class) Property(name string) (string, bool) {
	v, ok := c.desc.Properties()[name]
	return v, ok
}

// HasConstructor reports whether objects of the class can be created.
// Dummy classes answer from plugin metadata without loading the plugin.
func (c *Class) HasConstructor() bool {
	switch d := c.desc.(type) {
	case *DummyDescriptor:
		return d.HasConstructor()
	case *RealDescriptor:
		return d.HasConstructor()
	}
	return false
}

// HasDefaultConstructor reports whether the class has a constructor without
// parameters. Dummy classes answer from plugin metadata.
func (c *Class) HasDefaultConstructor() bool {
	switch d := c.desc.(type) {
	case *DummyDescriptor:
		return d.HasDefaultConstructor()
	case *RealDescriptor:
		return d.HasDefaultConstructor()
	}
	return false
}

// real returns the real descriptor, promoting a dummy class first.
func (c *Class) real() *RealDescriptor {
	switch d := c.desc.(type) {
	case *RealDescriptor:
		return d
	case *DummyDescriptor:
		if d.reg == nil {
			return nil
		}
		return d.reg.requestReal(c)
	}
	return nil
}

// Attributes returns own and inherited attributes.
func (c *Class) Attributes() []*Attribute {
	if d := c.real(); d != nil {
		return d.Attributes()
	}
	return nil
}

// Attribute returns the attribute called name, or nil.
func (c *Class) Attribute(name string) *Attribute {
	if d := c.real(); d != nil {
		return d.Attribute(name)
	}
	return nil
}

// Methods returns own and inherited methods.
func (c *Class) Methods() []*Method {
	if d := c.real(); d != nil {
		return d.Methods()
	}
	return nil
}

// Method returns the method called name, or nil.
func (c *Class) Method(name string) *Method {
	if d := c.real(); d != nil {
		return d.Method(name)
	}
	return nil
}

// Signals returns own and inherited signals.
func (c *Class) Signals() []*Signal {
	if d := c.real(); d != nil {
		return d.Signals()
	}
	return nil
}

// Signal returns the signal called name, or nil.
func (c *Class) Signal(name string) *Signal {
	if d := c.real(); d != nil {
		return d.Signal(name)
	}
	return nil
}

// Slots returns own and inherited slots.
func (c *Class) Slots() []*Slot {
	if d := c.real(); d != nil {
		return d.Slots()
	}
	return nil
}

// Slot returns the slot called name, or nil.
func (c *Class) Slot(name string) *Slot {
	if d := c.real(); d != nil {
		return d.Slot(name)
	}
	return nil
}

// Constructors returns the class's own constructors.
func (c *Class) Constructors() []*Constructor {
	if d := c.real(); d != nil {
		return d.Constructors()
	}
	return nil
}

// Constructor returns the constructor called name, or nil.
func (c *Class) Constructor(name string) *Constructor {
	if d := c.real(); d != nil {
		return d.Constructor(name)
	}
	return nil
}

// CallMethod invokes the method called name on obj.
func (c *Class) CallMethod(obj Object, name string, params Params) (any, error) {
	if obj == nil {
		return nil, ErrNilObject
	}
	m := c.Method(name)
	if m == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoMethod, c.FullName(), name)
	}
	return m.Call(obj, params)
}

// CallSlot invokes the slot called name on obj.
func (c *Class) CallSlot(obj Object, name string, params Params) (any, error) {
	if obj == nil {
		return nil, ErrNilObject
	}
	s := c.Slot(name)
	if s == nil {
		return nil, fmt.Errorf("%w: slot %s.%s", ErrNoMethod, c.FullName(), name)
	}
	return s.Call(obj, params)
}

// Create creates an object with the default constructor.
func (c *Class) Create() (Object, error) {
	for _, k := range c.Constructors() {
		if k.IsDefault() {
			return k.Invoke(c, nil)
		}
	}
	return nil, fmt.Errorf("%w: %s has no default constructor", ErrNoConstructor, c.FullName())
}

// CreateWithParams creates an object with the first constructor that
// accepts params.
func (c *Class) CreateWithParams(params Params) (Object, error) {
	for _, k := range c.Constructors() {
		if k.Accepts(params) {
			return k.Invoke(c, params)
		}
	}
	return nil, fmt.Errorf("%w: %s has no constructor %s", ErrNoConstructor, c.FullName(), params.Signature(TypeObject))
}

// CreateByName creates an object with the constructor called name, which
// must accept params.
func (c *Class) CreateByName(name string, params Params) (Object, error) {
	k := c.Constructor(name)
	if k == nil || !k.Accepts(params) {
		return nil, fmt.Errorf("%w: %s.%s for %s", ErrNoConstructor, c.FullName(), name, params.Signature(TypeObject))
	}
	return k.Invoke(c, params)
}

// CreateByNameString creates an object with the constructor called name.
// args is a parameter string (see ParseParamString) whose values are
// converted to the constructor's parameter types.
func (c *Class) CreateByNameString(name, args string) (Object, error) {
	k := c.Constructor(name)
	if k == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoConstructor, c.FullName(), name)
	}
	params, err := ParseParamString(args)
	if err != nil {
		return nil, err
	}
	return k.InvokeStrings(c, stringArgs(params))
}
