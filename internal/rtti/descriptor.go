package rtti

// ClassInfo is the identity and metadata of a class declaration.
type ClassInfo struct {
	Namespace     string
	Name          string
	BaseClassName string
	Description   string
	Properties    map[string]string
}

// Descriptor is the metadata behind a Class handle.
// It is implemented by *DummyDescriptor and *RealDescriptor only.
type Descriptor interface {
	// IsDummy reports whether the descriptor is a metadata-only placeholder.
	IsDummy() bool

	ModuleID() int
	Name() string
	Namespace() string
	FullName() string
	BaseClassName() string
	Description() string

	// Properties returns own and inherited properties.
	Properties() map[string]string

	// AddProperty adds or replaces an own property.
	AddProperty(name, value string)

	// IsInitialized reports whether inherited state has been computed.
	IsInitialized() bool

	base() *descriptorBase
	initClass()
	clear()
}

// FullName joins a namespace and a class name.
func FullName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "::" + name
}

type descriptorBase struct {
	reg      *Registry
	moduleID int

	name          string
	namespace     string
	baseClassName string
	description   string

	ownProps map[string]string
	props    map[string]string

	initialized  bool
	initializing bool
}

func newDescriptorBase(info ClassInfo) descriptorBase {
	own := make(map[string]string, len(info.Properties))
	for k, v := range info.Properties {
		own[k] = v
	}
	return descriptorBase{
		name:          info.Name,
		namespace:     info.Namespace,
		baseClassName: info.BaseClassName,
		description:   info.Description,
		ownProps:      own,
	}
}

func (d *descriptorBase) base() *descriptorBase { return d }

// ModuleID returns the id of the module that registered the class.
func (d *descriptorBase) ModuleID() int { return d.moduleID }

// Name returns the class name without namespace.
func (d *descriptorBase) Name() string { return d.name }

// Namespace returns the class namespace.
func (d *descriptorBase) Namespace() string { return d.namespace }

// FullName returns "Namespace::Name".
func (d *descriptorBase) FullName() string { return FullName(d.namespace, d.name) }

// BaseClassName returns the full name of the base class.
func (d *descriptorBase) BaseClassName() string { return d.baseClassName }

// Description returns the class description.
func (d *descriptorBase) Description() string { return d.description }

// IsInitialized reports whether inherited state has been computed.
func (d *descriptorBase) IsInitialized() bool { return d.initialized }

// resolveBase looks up the base class. ok is false when a base class is
// named but not registered.
func (d *descriptorBase) resolveBase() (base *Class, ok bool) {
	if d.baseClassName == "" {
		return nil, true
	}
	if d.reg == nil {
		return nil, false
	}
	base = d.reg.GetClass(d.baseClassName)
	if base == nil {
		d.reg.log.Warn("class %s: base class %s not found", d.FullName(), d.baseClassName)
		return nil, false
	}
	return base, true
}

func (d *descriptorBase) mergeProperties(inherited map[string]string) {
	d.props = make(map[string]string, len(inherited)+len(d.ownProps))
	for k, v := range inherited {
		d.props[k] = v
	}
	for k, v := range d.ownProps {
		d.props[k] = v
	}
}

func (d *descriptorBase) properties() map[string]string {
	out := make(map[string]string, len(d.props))
	for k, v := range d.props {
		out[k] = v
	}
	return out
}

func (d *descriptorBase) addProperty(name, value string) {
	if d.ownProps == nil {
		d.ownProps = make(map[string]string)
	}
	d.ownProps[name] = value
}

// deInit drops the computed state of this class and of every class
// derived from it.
func (d *descriptorBase) deInit(self Descriptor) {
	self.clear()
	if d.reg != nil {
		d.reg.invalidateDerived(d.FullName())
	}
}
