package rtti

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/plcore/internal/pluginxml"
)

// ScanPlugins loads every .plugin descriptor in path, descending into
// subdirectories when recursive is set. delayed is the default for
// descriptors without a Delayed flag.
//
// Returns false only if path itself cannot be read; descriptors that fail
// to load are logged and skipped.
func (r *Registry) ScanPlugins(path string, recursive, delayed bool) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		r.log.Error("scan plugins in %s: %v", path, err)
		return false
	}

	start := time.Now()
	loaded := 0
	for _, e := range entries {
		full := filepath.Join(path, e.Name())
		if e.IsDir() {
			if recursive {
				r.ScanPlugins(full, true, delayed)
			}
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), pluginxml.Extension) {
			continue
		}
		if r.LoadPlugin(full, delayed) {
			loaded++
		}
	}

	r.log.Since(start, "scanned %s: %d plugins loaded", path, loaded)
	return true
}

// LoadPlugin loads a .plugin descriptor. With delayed set (and no Delayed
// flag in the descriptor) only the class metadata is registered and the
// binary is loaded on first use.
//
// A missing Version attribute or Version 0 is read as version 1 with a
// deprecation warning. Negative and unknown versions are rejected.
func (r *Registry) LoadPlugin(filename string, delayed bool) bool {
	doc, err := pluginxml.ParseFile(filename)
	if err != nil {
		r.log.Error("load plugin: %v", err)
		return false
	}

	version, err := doc.Version()
	if err != nil {
		r.log.Error("load plugin %s: %v", filename, err)
		return false
	}

	switch {
	case version < 0:
		r.log.Error("load plugin %s: invalid format version %d", filename, version)
		return false
	case version == 0:
		r.log.Warn("load plugin %s: format version 0 is deprecated, use version %d", filename, pluginxml.CurrentVersion)
		return r.loadPluginV1(doc, filename, delayed)
	case version == pluginxml.CurrentVersion:
		return r.loadPluginV1(doc, filename, delayed)
	default:
		r.log.Error("load plugin %s: unsupported format version %d", filename, version)
		return false
	}
}

func (r *Registry) loadPluginV1(doc *pluginxml.Plugin, filename string, delayed bool) bool {
	if !doc.IsActive() {
		r.log.Info("plugin %s is inactive, skipped", filename)
		return true
	}

	force := doc.ForceBuildType()
	delayed = doc.IsDelayed(delayed)

	libs := doc.Libraries(r.platform.Name, r.platform.Bits, r.buildType.String())
	if len(libs) == 0 {
		r.log.Warn("plugin %s has no %s library for %s/%d", filename, r.buildType, r.platform.Name, r.platform.Bits)
		return false
	}

	dir := filepath.Dir(filename)
	ok := false
	for _, lib := range libs {
		path := lib
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}

		if r.ModuleByFilename(path) != nil {
			ok = true
			continue
		}

		var m *Module
		if delayed {
			m = r.loadModuleDelayed(doc, path, force)
		} else {
			m = r.LoadModule(path, force)
			if m != nil && m.name == "" {
				m.SetModuleInfo(doc.Name, doc.Vendor, doc.License, doc.Description)
			}
		}
		if m != nil {
			ok = true
		}
	}
	return ok
}

// loadModuleDelayed registers the classes a descriptor declares as dummy
// classes of a new module without opening the binary.
func (r *Registry) loadModuleDelayed(doc *pluginxml.Plugin, filename string, forceBuildTypeMatch bool) *Module {
	if _, err := os.Stat(filename); err != nil {
		r.log.Error("delayed load of %s: %v", filename, err)
		return nil
	}

	m := newModule(r.UniqueModuleID())
	m.isPlugin = true
	m.filename = filename
	m.forceBuildTypeMatch = forceBuildTypeMatch
	m.SetModuleInfo(doc.Name, doc.Vendor, doc.License, doc.Description)
	r.addModule(m)
	r.emit(Event{Type: EventModuleLoaded, Module: m})

	for _, c := range doc.Classes {
		if c.Name == "" {
			r.log.Warn("delayed load of %s: class without name skipped", filename)
			continue
		}
		if r.GetClass(c.FullName()) != nil {
			continue
		}
		d := NewDummyDescriptor(ClassInfo{
			Namespace:     c.Namespace,
			Name:          c.Name,
			BaseClassName: c.BaseClassName,
			Description:   c.Description,
			Properties:    c.PropertyMap(),
		}, c.HasConstructor(), c.HasDefaultConstructor())
		r.RegisterClass(m.id, d)
	}

	r.log.Debug("delayed module %d for %s with %d classes", m.id, filename, len(m.classes))
	return m
}
