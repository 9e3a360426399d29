package rtti

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/plcore/internal/logging"
)

// fakeBinary is an in-memory plugin binary.
type fakeBinary struct {
	debug    bool
	hasDebug bool
	id       int
	hasInfo  bool
	classes  func() []Descriptor
	err      error
	closed   bool
}

func (b *fakeBinary) IsDebugBuild() (bool, bool) { return b.debug, b.hasDebug }

func (b *fakeBinary) PluginInfo() (int, bool) { return b.id, b.hasInfo }

func (b *fakeBinary) Classes() ([]Descriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.classes == nil {
		return nil, nil
	}
	return b.classes(), nil
}

func (b *fakeBinary) Close() error {
	b.closed = true
	return nil
}

// fakeLoader opens fakeBinary values by path.
type fakeLoader struct {
	bins  map[string]*fakeBinary
	opens int
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{bins: make(map[string]*fakeBinary)}
}

func (l *fakeLoader) open(path string) (Binary, error) {
	b, ok := l.bins[path]
	if !ok {
		return nil, fmt.Errorf("no fake binary for %s", path)
	}
	l.opens++
	b.closed = false
	return b, nil
}

// add creates the file for a fake binary and registers it.
func (l *fakeLoader) add(t *testing.T, path string, b *fakeBinary) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	l.bins[path] = b
	return path
}

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *fakeLoader, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logging.New(logging.Config{
		Level:  logging.LevelDebug,
		Format: logging.FormatText,
		Output: &buf,
	})
	loader := newFakeLoader()
	opts = append([]Option{WithLogger(log), WithOpener(".fake", loader.open)}, opts...)
	return NewRegistry(opts...), loader, &buf
}

// recordEvents subscribes to r and returns the collected events.
func recordEvents(r *Registry) *[]Event {
	var events []Event
	r.Subscribe(func(e Event) {
		events = append(events, e)
	})
	return &events
}

func newReal(ns, name, base string, members ...Member) *RealDescriptor {
	return NewRealDescriptor(ClassInfo{Namespace: ns, Name: name, BaseClassName: base}, members...)
}

func newDummy(ns, name, base string) *DummyDescriptor {
	return NewDummyDescriptor(ClassInfo{Namespace: ns, Name: name, BaseClassName: base}, true, true)
}

func defaultCtor() *Constructor {
	return NewConstructor("Create", DefaultConstructorSignature, func(c *Class, _ Params) (Object, error) {
		return NewInstance(c), nil
	}, "")
}

func attributeNames(attrs []*Attribute) []string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name()
	}
	return names
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}
