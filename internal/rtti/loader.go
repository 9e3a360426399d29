package rtti

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Binary is an opened plugin binary.
type Binary interface {
	// IsDebugBuild reports the build type marker. ok is false when the
	// binary has no marker.
	IsDebugBuild() (debug bool, ok bool)

	// PluginInfo returns the module id chosen by the plugin. ok is false
	// when the binary has no plugin info entry point. A non-positive id
	// means the plugin rejects the host build type.
	PluginInfo() (id int, ok bool)

	// Classes returns the real descriptors the plugin registers.
	Classes() ([]Descriptor, error)

	// Close releases the binary.
	Close() error
}

// ModuleInfoBinary is implemented by binaries that describe their module.
type ModuleInfoBinary interface {
	ModuleInfo() (name, vendor, license, description string)
}

// Opener opens the plugin binary at path.
type Opener func(path string) (Binary, error)

// RegisterOpener sets the opener for plugin binaries with extension ext
// (".lua" or "lua"). A nil opener removes the registration. Binaries with
// no registered extension are opened as native shared libraries.
func (r *Registry) RegisterOpener(ext string, o Opener) {
	ext = normalizeExt(ext)
	if o == nil {
		delete(r.openers, ext)
		return
	}
	r.openers[ext] = o
}

func (r *Registry) opener(path string) Opener {
	if o, ok := r.openers[normalizeExt(filepath.Ext(path))]; ok {
		return o
	}
	return OpenNative
}

// LoadModule loads the plugin binary at path and registers its classes.
//
// If a module with the same filename is already loaded it is returned
// unchanged. When forceBuildTypeMatch is set the binary's build type marker
// must be present and match the host build type. Returns nil on failure;
// failures are logged and leave the registry unchanged.
func (r *Registry) LoadModule(path string, forceBuildTypeMatch bool) *Module {
	for _, m := range r.moduleOrder {
		if m.filename == path && m.IsLoaded() {
			return m
		}
	}

	if _, err := os.Stat(path); err != nil {
		r.log.Error("load module %s: %v", path, err)
		return nil
	}

	start := time.Now()
	bin, err := r.opener(path)(path)
	if err != nil {
		r.log.Error("load module %s: %v", path, err)
		return nil
	}

	m, err := r.attach(bin, path, forceBuildTypeMatch)
	if err != nil {
		r.log.Error("load module %s: %v", path, err)
		if cerr := bin.Close(); cerr != nil {
			r.log.Warn("close %s: %v", path, cerr)
		}
		return nil
	}

	r.log.Since(start, "loaded module %d from %s with %d classes", m.id, path, len(m.classes))
	return m
}

func (r *Registry) attach(bin Binary, path string, forceBuildTypeMatch bool) (*Module, error) {
	if forceBuildTypeMatch {
		debug, ok := bin.IsDebugBuild()
		if !ok {
			return nil, fmt.Errorf("%w: PLIsDebugBuild", ErrNoEntryPoint)
		}
		if debug != (r.buildType == BuildDebug) {
			got := BuildRelease
			if debug {
				got = BuildDebug
			}
			return nil, fmt.Errorf("%w: plugin is a %s build, host is %s", ErrBuildTypeMismatch, got, r.buildType)
		}
	}

	id, ok := bin.PluginInfo()
	if !ok {
		return nil, fmt.Errorf("%w: PLGetPluginInfo", ErrNoEntryPoint)
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: plugin reported module id %d", ErrBuildTypeMismatch, id)
	}
	if id >= FirstDelayedModuleID {
		return nil, fmt.Errorf("%w: %d", ErrReservedModuleID, id)
	}
	if existing := r.modules[id]; existing != nil && existing.IsLoaded() {
		return nil, fmt.Errorf("%w: %d is used by %s", ErrModuleIDInUse, id, moduleLabel(existing))
	}

	descs, err := bin.Classes()
	if err != nil {
		return nil, fmt.Errorf("register classes: %w", err)
	}

	m := r.modules[id]
	created := m == nil
	if created {
		m = newModule(id)
		r.addModule(m)
	}
	m.isPlugin = true
	m.binary = bin
	m.filename = path
	if ib, ok := bin.(ModuleInfoBinary); ok {
		m.SetModuleInfo(ib.ModuleInfo())
	}
	if created {
		r.emit(Event{Type: EventModuleLoaded, Module: m})
	}

	for _, d := range descs {
		r.RegisterClass(id, d)
	}
	return m, nil
}
