package dynlib

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Library errors.
var (
	// ErrAlreadyLoaded is recorded when Load is called on a loaded library.
	ErrAlreadyLoaded = errors.New("library is already loaded")

	// ErrNotLoaded is recorded when an operation requires a loaded library.
	ErrNotLoaded = errors.New("library is not loaded")

	// ErrSymbolNotFound is recorded when a symbol lookup fails.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Library is a handle to one loaded shared library.
// The zero value is an unloaded library ready for Load.
type Library struct {
	path    string
	handle  uintptr
	anchor  uintptr
	lastErr error
}

// New creates an unloaded library.
func New() *Library {
	return &Library{}
}

// Load loads the shared library at path.
// Returns false if this instance already holds a loaded library or if the
// operating system loader fails; LastError describes the failure.
func (l *Library) Load(path string) bool {
	if l.handle != 0 {
		l.lastErr = fmt.Errorf("%w: %s", ErrAlreadyLoaded, l.path)
		return false
	}

	handle, err := open(path)
	if err != nil {
		l.lastErr = err
		return false
	}

	l.path = path
	l.handle = handle
	l.lastErr = nil
	return true
}

// IsLoaded returns true if the library is loaded.
func (l *Library) IsLoaded() bool {
	return l.handle != 0
}

// Path returns the path the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Symbol returns the address of the exported symbol name.
// Returns false if the library is not loaded or does not export name.
func (l *Library) Symbol(name string) (uintptr, bool) {
	if l.handle == 0 {
		l.lastErr = ErrNotLoaded
		return 0, false
	}

	addr, err := lookup(l.handle, name)
	if err != nil || addr == 0 {
		l.lastErr = fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, name, l.path)
		return 0, false
	}
	if l.anchor == 0 {
		l.anchor = addr
	}
	return addr, true
}

// Unload releases the library.
// Returns false if the library is not loaded or the operating system refuses
// to unload it. A failed unload leaves the library marked as loaded.
func (l *Library) Unload() bool {
	if l.handle == 0 {
		l.lastErr = ErrNotLoaded
		return false
	}

	if err := release(l.handle); err != nil {
		l.lastErr = err
		return false
	}

	l.handle = 0
	l.anchor = 0
	return true
}

// AbsolutePath returns the canonical path of the loaded library as reported
// by the operating system. Returns "" when not loaded or on error.
func (l *Library) AbsolutePath() string {
	if l.handle == 0 {
		return ""
	}

	p, err := modulePath(l.handle, l.path, l.anchor)
	if err != nil {
		l.lastErr = err
		return ""
	}
	return filepath.Clean(p)
}

// LastError returns the error of the most recent failed operation.
func (l *Library) LastError() error {
	return l.lastErr
}

// Close unloads the library if it is still loaded.
// It is safe to call Close multiple times.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	if !l.Unload() {
		return l.lastErr
	}
	return nil
}
