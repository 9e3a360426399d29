package rtti

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/plcore/internal/logging"
)

// FirstDelayedModuleID is the first id handed out to delayed plugin modules.
// Plugin binaries and static modules choose ids below it.
const FirstDelayedModuleID = 1_000_000_000

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l.WithComponent("rtti")
		}
	}
}

// WithBuildType sets the host build type used to pick plugin libraries.
func WithBuildType(b BuildType) Option {
	return func(r *Registry) {
		r.buildType = b
	}
}

// WithPlatform overrides the host platform used to pick plugin libraries.
func WithPlatform(p Platform) Option {
	return func(r *Registry) {
		r.platform = p
	}
}

// WithOpener registers an opener for plugin binaries with extension ext.
func WithOpener(ext string, o Opener) Option {
	return func(r *Registry) {
		r.RegisterOpener(ext, o)
	}
}

// Registry owns all modules and classes.
type Registry struct {
	log       *logging.Logger
	buildType BuildType
	platform  Platform
	openers   map[string]Opener

	modules     map[int]*Module
	moduleOrder []*Module

	classes    map[string]*Class
	classOrder []*Class

	nextModuleID int
	handlers     []EventHandler
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		log:          logging.Nop(),
		buildType:    BuildRelease,
		platform:     HostPlatform(),
		openers:      make(map[string]Opener),
		modules:      make(map[int]*Module),
		classes:      make(map[string]*Class),
		nextModuleID: FirstDelayedModuleID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildType returns the host build type.
func (r *Registry) BuildType() BuildType { return r.buildType }

// Platform returns the host platform.
func (r *Registry) Platform() Platform { return r.platform }

// GetClass returns the class registered under a full name, or nil.
// It never loads plugins.
func (r *Registry) GetClass(name string) *Class {
	return r.classes[name]
}

// Classes returns every class in registration order, including real
// classes whose name collided with an earlier registration.
func (r *Registry) Classes() []*Class {
	return slices.Clone(r.classOrder)
}

// ClassQuery filters GetClasses.
type ClassQuery struct {
	// BaseClass restricts the result to classes derived from it.
	// Empty matches every class.
	BaseClass string
	// Recursive also matches indirectly derived classes.
	Recursive bool
	// IncludeBase also matches BaseClass itself.
	IncludeBase bool
	// ExcludeAbstract drops classes without constructors.
	ExcludeAbstract bool
	// ModuleID restricts the result to one module. Zero matches all.
	ModuleID int
}

// GetClasses returns the classes matching q in registration order.
func (r *Registry) GetClasses(q ClassQuery) []*Class {
	var out []*Class
	for _, c := range r.classOrder {
		if q.ModuleID != 0 && c.ModuleID() != q.ModuleID {
			continue
		}
		if !r.matchesBase(c, q) {
			continue
		}
		if q.ExcludeAbstract && !c.HasConstructor() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *Registry) matchesBase(c *Class, q ClassQuery) bool {
	switch {
	case q.BaseClass == "":
		return true
	case c.FullName() == q.BaseClass:
		return q.IncludeBase
	case q.Recursive:
		return r.isDerived(c, q.BaseClass)
	default:
		return c.BaseClassName() == q.BaseClass
	}
}

// isDerived walks the base class chain of c looking for name.
func (r *Registry) isDerived(c *Class, name string) bool {
	base := c.BaseClassName()
	for steps := 0; base != "" && steps <= len(r.classOrder); steps++ {
		if base == name {
			return true
		}
		next := r.classes[base]
		if next == nil {
			return false
		}
		base = next.BaseClassName()
	}
	return false
}

// Modules returns every module in load order.
func (r *Registry) Modules() []*Module {
	return slices.Clone(r.moduleOrder)
}

// ModuleByID returns the module with the given id, or nil.
func (r *Registry) ModuleByID(id int) *Module {
	return r.modules[id]
}

// ModuleByFilename returns a module created from the given file, or nil.
// A module whose code is loaded is preferred over a delayed placeholder.
func (r *Registry) ModuleByFilename(filename string) *Module {
	var found *Module
	for _, m := range r.moduleOrder {
		if m.filename != filename {
			continue
		}
		if m.IsLoaded() {
			return m
		}
		if found == nil {
			found = m
		}
	}
	return found
}

// CreateModule returns the module with the given id, creating it if needed.
func (r *Registry) CreateModule(id int) *Module {
	if m := r.modules[id]; m != nil {
		return m
	}
	m := newModule(id)
	r.addModule(m)
	r.emit(Event{Type: EventModuleLoaded, Module: m})
	return m
}

// UniqueModuleID returns an unused module id for a delayed plugin.
func (r *Registry) UniqueModuleID() int {
	for r.modules[r.nextModuleID] != nil {
		r.nextModuleID++
	}
	id := r.nextModuleID
	r.nextModuleID++
	return id
}

func (r *Registry) addModule(m *Module) {
	r.modules[m.id] = m
	r.moduleOrder = append(r.moduleOrder, m)
}

func (r *Registry) removeModule(m *Module) {
	if r.modules[m.id] == m {
		delete(r.modules, m.id)
	}
	if i := slices.Index(r.moduleOrder, m); i >= 0 {
		r.moduleOrder = slices.Delete(r.moduleOrder, i, i+1)
	}
}

// RegisterClass registers a descriptor for module id.
//
// A new name gets a new Class handle. When the name is taken:
//   - dummy over dummy: the new descriptor is discarded
//   - real over dummy: the handle is promoted to the real descriptor and
//     moves to the real module
//   - dummy over real: the new descriptor is discarded
//   - real over real: a warning is logged and the new class is kept in its
//     module and in Classes, but GetClass keeps returning the first one
//
// Returns the handle now backed by d, or nil if d was discarded.
func (r *Registry) RegisterClass(moduleID int, d Descriptor) *Class {
	if d == nil {
		return nil
	}

	name := d.FullName()
	existing := r.classes[name]

	switch {
	case existing == nil:
		m := r.CreateModule(moduleID)
		r.bind(d, moduleID)
		c := &Class{desc: d}
		r.classes[name] = c
		r.classOrder = append(r.classOrder, c)
		m.addClass(c)
		r.invalidateDerived(name)
		r.emit(Event{Type: EventClassLoaded, Module: m, Class: c})
		return c

	case existing.desc.IsDummy() && d.IsDummy():
		r.log.Debug("class %s: already known, dummy from module %d discarded", name, moduleID)
		return nil

	case existing.desc.IsDummy():
		from := r.modules[existing.desc.ModuleID()]
		to := r.CreateModule(moduleID)
		if from != to {
			to.addClass(existing)
			if from != nil {
				from.removeClass(existing)
			}
		}
		r.bind(d, moduleID)
		existing.desc = d
		existing.generation++
		r.invalidateDerived(name)
		r.log.Debug("class %s: promoted to real class from module %d", name, moduleID)
		if from != nil && from != to {
			r.retirePlaceholder(from)
		}
		return existing

	case d.IsDummy():
		r.log.Debug("class %s: real class registered, dummy from module %d discarded", name, moduleID)
		return nil

	default:
		r.log.Warn("class %s: name collision between module %d and module %d, keeping the first",
			name, existing.desc.ModuleID(), moduleID)
		m := r.CreateModule(moduleID)
		r.bind(d, moduleID)
		c := &Class{desc: d}
		r.classOrder = append(r.classOrder, c)
		m.addClass(c)
		r.emit(Event{Type: EventClassLoaded, Module: m, Class: c})
		return c
	}
}

func (r *Registry) bind(d Descriptor, moduleID int) {
	b := d.base()
	b.reg = r
	b.moduleID = moduleID
	d.clear()
}

// UnregisterClass removes the class backed by d.
// Returns false if d is not registered.
func (r *Registry) UnregisterClass(moduleID int, d Descriptor) bool {
	if d == nil {
		return false
	}
	c := r.findClass(d)
	if c == nil {
		return false
	}

	name := d.FullName()
	if r.classes[name] == c {
		delete(r.classes, name)
	}
	if i := slices.Index(r.classOrder, c); i >= 0 {
		r.classOrder = slices.Delete(r.classOrder, i, i+1)
	}
	m := r.modules[moduleID]
	if m != nil {
		m.removeClass(c)
	}
	r.invalidateDerived(name)
	r.emit(Event{Type: EventClassUnloaded, Module: m, Class: c})
	return true
}

func (r *Registry) findClass(d Descriptor) *Class {
	if c := r.classes[d.FullName()]; c != nil && c.desc == d {
		return c
	}
	for _, c := range r.classOrder {
		if c.desc == d {
			return c
		}
	}
	return nil
}

// invalidateDerived drops the computed state of every class directly or
// indirectly derived from name.
func (r *Registry) invalidateDerived(name string) {
	seen := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		base := queue[0]
		queue = queue[1:]
		for _, c := range r.classOrder {
			if c.desc.BaseClassName() != base {
				continue
			}
			c.desc.clear()
			if full := c.FullName(); !seen[full] {
				seen[full] = true
				queue = append(queue, full)
			}
		}
	}
}

// requestReal loads the plugin of a dummy class and returns the real
// descriptor that replaced it, or nil if the plugin did not provide one.
func (r *Registry) requestReal(c *Class) *RealDescriptor {
	if d, ok := c.desc.(*RealDescriptor); ok {
		return d
	}

	name := c.FullName()
	m := r.modules[c.desc.ModuleID()]
	if m == nil || m.filename == "" {
		r.log.Warn("class %s: no module to load the real class from", name)
		return nil
	}

	generation := c.generation
	r.LoadModule(m.filename, m.forceBuildTypeMatch)
	if c.generation == generation {
		r.log.Warn("class %s: %s did not provide the real class", name, m.filename)
		return nil
	}

	d, _ := c.desc.(*RealDescriptor)
	return d
}

// retirePlaceholder removes a delayed module once all its classes have
// been promoted.
func (r *Registry) retirePlaceholder(m *Module) {
	if m.IsLoaded() || len(m.classes) != 0 || r.modules[m.id] != m {
		return
	}
	r.emit(Event{Type: EventModuleUnloaded, Module: m})
	r.removeModule(m)
}

// UnloadModule unregisters every class of m, removes m and releases its
// binary. Returns false if m is not registered.
func (r *Registry) UnloadModule(m *Module) bool {
	if m == nil || r.modules[m.id] != m {
		return false
	}
	if err := r.unloadModule(m); err != nil {
		r.log.Error("unload module %d: %v", m.id, err)
	}
	return true
}

func (r *Registry) unloadModule(m *Module) error {
	classes := m.Classes()
	for i := len(classes) - 1; i >= 0; i-- {
		r.UnregisterClass(m.id, classes[i].desc)
	}
	r.emit(Event{Type: EventModuleUnloaded, Module: m})
	r.removeModule(m)
	return m.Close()
}

// Close unloads every module in reverse load order.
func (r *Registry) Close() error {
	modules := r.Modules()
	var errs []error
	for i := len(modules) - 1; i >= 0; i-- {
		m := modules[i]
		if err := r.unloadModule(m); err != nil {
			errs = append(errs, fmt.Errorf("module %d (%s): %w", m.id, moduleLabel(m), err))
		}
	}
	return errors.Join(errs...)
}

func moduleLabel(m *Module) string {
	switch {
	case m.name != "":
		return m.name
	case m.filename != "":
		return m.filename
	default:
		return "static"
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
