package rtti

// DummyDescriptor describes a class from plugin metadata alone.
// It carries properties and constructor flags but no members; member
// access through a Class handle loads the plugin binary and promotes the
// class to its real descriptor.
type DummyDescriptor struct {
	descriptorBase
	hasConstructor        bool
	hasDefaultConstructor bool
}

// NewDummyDescriptor creates a dummy descriptor.
func NewDummyDescriptor(info ClassInfo, hasConstructor, hasDefaultConstructor bool) *DummyDescriptor {
	return &DummyDescriptor{
		descriptorBase:        newDescriptorBase(info),
		hasConstructor:        hasConstructor,
		hasDefaultConstructor: hasDefaultConstructor,
	}
}

// IsDummy returns true.
func (d *DummyDescriptor) IsDummy() bool { return true }

// HasConstructor reports the constructor flag from the plugin metadata.
func (d *DummyDescriptor) HasConstructor() bool { return d.hasConstructor }

// HasDefaultConstructor reports the default constructor flag from the
// plugin metadata.
func (d *DummyDescriptor) HasDefaultConstructor() bool { return d.hasDefaultConstructor }

// Properties returns own and inherited properties.
func (d *DummyDescriptor) Properties() map[string]string {
	d.initClass()
	return d.properties()
}

// AddProperty adds or replaces an own property.
func (d *DummyDescriptor) AddProperty(name, value string) {
	d.deInit(d)
	d.addProperty(name, value)
}

func (d *DummyDescriptor) initClass() {
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

	var inherited map[string]string
	if base != nil {
		inherited = base.Properties()
	}
	d.mergeProperties(inherited)
	d.initialized = true
}

func (d *DummyDescriptor) clear() {
	d.props = nil
	d.initialized = false
}
