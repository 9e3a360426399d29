package rtti

import "slices"

// RealDescriptor describes a class backed by executable members.
//
// Inherited state is computed lazily: the first lookup resolves the base
// class through the registry, copies its properties and its attributes,
// methods, signals and slots, then merges the class's own members on top.
// Constructors are never inherited. Adding a property or member drops the
// computed state of the class and of every class derived from it.
type RealDescriptor struct {
	descriptorBase

	own []Member

	members      map[string]Member
	attributes   []*Attribute
	methods      []*Method
	signals      []*Signal
	slots        []*Slot
	constructors []*Constructor
}

// NewRealDescriptor creates a real descriptor with the given own members.
func NewRealDescriptor(info ClassInfo, members ...Member) *RealDescriptor {
	d := &RealDescriptor{descriptorBase: newDescriptorBase(info)}
	for _, m := range members {
		if m != nil {
			d.own = append(d.own, m)
		}
	}
	return d
}

// IsDummy returns false.
func (d *RealDescriptor) IsDummy() bool { return false }

// AddMember adds an own member.
func (d *RealDescriptor) AddMember(m Member) {
	if m == nil {
		return
	}
	d.deInit(d)
	d.own = append(d.own, m)
}

// AddProperty adds or replaces an own property.
func (d *RealDescriptor) AddProperty(name, value string) {
	d.deInit(d)
	d.addProperty(name, value)
}

// Properties returns own and inherited properties.
func (d *RealDescriptor) Properties() map[string]string {
	d.initClass()
	return d.properties()
}

// OwnMembers returns the members declared by this class, in declaration
// order.
func (d *RealDescriptor) OwnMembers() []Member {
	return slices.Clone(d.own)
}

// Attributes returns own and inherited attributes.
func (d *RealDescriptor) Attributes() []*Attribute {
	d.initClass()
	return slices.Clone(d.attributes)
}

// Methods returns own and inherited methods.
func (d *RealDescriptor) Methods() []*Method {
	d.initClass()
	return slices.Clone(d.methods)
}

// Signals returns own and inherited signals.
func (d *RealDescriptor) Signals() []*Signal {
	d.initClass()
	return slices.Clone(d.signals)
}

// Slots returns own and inherited slots.
func (d *RealDescriptor) Slots() []*Slot {
	d.initClass()
	return slices.Clone(d.slots)
}

// Constructors returns the class's own constructors.
func (d *RealDescriptor) Constructors() []*Constructor {
	d.initClass()
	return slices.Clone(d.constructors)
}

// Member returns the member called name of any kind.
func (d *RealDescriptor) Member(name string) Member {
	d.initClass()
	return d.members[name]
}

// Attribute returns the attribute called name, or nil.
func (d *RealDescriptor) Attribute(name string) *Attribute {
	m, _ := d.Member(name).(*Attribute)
	return m
}

// Method returns the method called name, or nil.
func (d *RealDescriptor) Method(name string) *Method {
	m, _ := d.Member(name).(*Method)
	return m
}

// Signal returns the signal called name, or nil.
func (d *RealDescriptor) Signal(name string) *Signal {
	m, _ := d.Member(name).(*Signal)
	return m
}

// Slot returns the slot called name, or nil.
func (d *RealDescriptor) Slot(name string) *Slot {
	m, _ := d.Member(name).(*Slot)
	return m
}

// Constructor returns the constructor called name, or nil.
func (d *RealDescriptor) Constructor(name string) *Constructor {
	m, _ := d.Member(name).(*Constructor)
	return m
}

// HasConstructor reports whether the class declares any constructor.
func (d *RealDescriptor) HasConstructor() bool {
	return len(d.Constructors()) > 0
}

// HasDefaultConstructor reports whether the class declares a constructor
// without parameters.
func (d *RealDescriptor) HasDefaultConstructor() bool {
	for _, k := range d.Constructors() {
		if k.IsDefault() {
			return true
		}
	}
	return false
}

func (d *RealDescriptor) initClass() {
	if d.initialized || d.initializing {
		return
	}
	d.initializing = true
	defer func() { d.initializing = false }()

	base, ok := d.resolveBase()
	if !ok {
		d.clear()
		return
	}

	// Accessing a dummy base loads its plugin, which may invalidate this
	// descriptor; collect everything before writing any state.
	var (
		attributes []*Attribute
		methods    []*Method
		signals    []*Signal
		slots      []*Slot
		inherited  map[string]string
	)
	if base != nil {
		attributes = base.Attributes()
		methods = base.Methods()
		signals = base.Signals()
		slots = base.Slots()
		inherited = base.Properties()
	}

	d.mergeProperties(inherited)
	d.members = make(map[string]Member)
	d.attributes = attributes
	d.methods = methods
	d.signals = signals
	d.slots = slots
	d.constructors = nil
	for _, m := range attributes {
		d.members[m.Name()] = m
	}
	for _, m := range methods {
		d.members[m.Name()] = m
	}
	for _, m := range signals {
		d.members[m.Name()] = m
	}
	for _, m := range slots {
		d.members[m.Name()] = m
	}

	for _, m := range d.own {
		d.merge(m)
	}
	d.initialized = true
}

// merge adds an own member, replacing an inherited member of the same name
// in place.
func (d *RealDescriptor) merge(m Member) {
	prev := d.members[m.Name()]
	d.members[m.Name()] = m

	switch v := m.(type) {
	case *Attribute:
		d.attributes = replaceOrAppend(d.attributes, v, prev)
	case *Method:
		d.methods = replaceOrAppend(d.methods, v, prev)
	case *Signal:
		d.signals = replaceOrAppend(d.signals, v, prev)
	case *Slot:
		d.slots = replaceOrAppend(d.slots, v, prev)
	case *Constructor:
		d.constructors = replaceOrAppend(d.constructors, v, prev)
	}
}

func replaceOrAppend[T Member](list []T, m T, prev Member) []T {
	if prev != nil {
		for i, e := range list {
			if Member(e) == prev {
				list[i] = m
				return list
			}
		}
	}
	return append(list, m)
}

func (d *RealDescriptor) clear() {
	d.props = nil
	d.members = nil
	d.attributes = nil
	d.methods = nil
	d.signals = nil
	d.slots = nil
	d.constructors = nil
	d.initialized = false
}
