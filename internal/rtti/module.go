package rtti

import "slices"

// Module is a unit of classes: the statically linked core, a loaded plugin
// binary, or the placeholder of a delayed plugin.
type Module struct {
	id          int
	name        string
	vendor      string
	license     string
	description string

	isPlugin bool
	filename string
	binary   Binary

	// forceBuildTypeMatch is remembered for delayed modules and applied
	// when their binary is loaded on promotion.
	forceBuildTypeMatch bool

	classes []*Class
}

func newModule(id int) *Module {
	return &Module{id: id}
}

// ID returns the module id.
func (m *Module) ID() int { return m.id }

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Vendor returns the module vendor.
func (m *Module) Vendor() string { return m.vendor }

// License returns the module license.
func (m *Module) License() string { return m.license }

// Description returns the module description.
func (m *Module) Description() string { return m.description }

// IsPlugin reports whether the module comes from a plugin.
func (m *Module) IsPlugin() bool { return m.isPlugin }

// Filename returns the absolute path of the plugin binary.
func (m *Module) Filename() string { return m.filename }

// Binary returns the opened plugin binary, or nil when the module is
// statically linked or its plugin has not been loaded yet.
func (m *Module) Binary() Binary { return m.binary }

// IsLoaded reports whether the module's code is available.
func (m *Module) IsLoaded() bool { return !m.isPlugin || m.binary != nil }

// Classes returns the module's classes in registration order.
func (m *Module) Classes() []*Class { return slices.Clone(m.classes) }

// SetModuleInfo sets the descriptive fields of the module.
func (m *Module) SetModuleInfo(name, vendor, license, description string) {
	m.name = name
	m.vendor = vendor
	m.license = license
	m.description = description
}

func (m *Module) addClass(c *Class) {
	if !slices.Contains(m.classes, c) {
		m.classes = append(m.classes, c)
	}
}

func (m *Module) removeClass(c *Class) {
	if i := slices.Index(m.classes, c); i >= 0 {
		m.classes = slices.Delete(m.classes, i, i+1)
	}
}

// Close releases the module's binary.
func (m *Module) Close() error {
	if m.binary == nil {
		return nil
	}
	err := m.binary.Close()
	m.binary = nil
	return err
}
