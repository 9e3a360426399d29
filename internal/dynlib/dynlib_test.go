package dynlib

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestNewIsUnloaded(t *testing.T) {
	lib := New()
	if lib.IsLoaded() {
		t.Error("New() library reports loaded")
	}
	if got := lib.AbsolutePath(); got != "" {
		t.Errorf("AbsolutePath() = %q, want empty", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	lib := New()
	missing := filepath.Join(t.TempDir(), "does-not-exist.so")

	if lib.Load(missing) {
		t.Fatal("Load() of a missing file succeeded")
	}
	if lib.IsLoaded() {
		t.Error("library reports loaded after failed Load()")
	}
	if lib.LastError() == nil {
		t.Error("LastError() is nil after failed Load()")
	}
}

func TestSymbolWhenNotLoaded(t *testing.T) {
	lib := New()
	addr, ok := lib.Symbol("PLGetPluginInfo")
	if ok || addr != 0 {
		t.Errorf("Symbol() on unloaded library = (%d, %v), want (0, false)", addr, ok)
	}
	if !errors.Is(lib.LastError(), ErrNotLoaded) {
		t.Errorf("LastError() = %v, want ErrNotLoaded", lib.LastError())
	}
}

func TestUnloadWhenNotLoaded(t *testing.T) {
	lib := New()
	if lib.Unload() {
		t.Error("Unload() on unloaded library returned true")
	}
	if err := lib.Close(); err != nil {
		t.Errorf("Close() on unloaded library = %v, want nil", err)
	}
	if err := lib.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

// systemLibrary returns a library name the host loader resolves through its
// search path, with an exported symbol and the file name prefix it loads.
func systemLibrary(t *testing.T) (name, symbol, prefix string) {
	t.Helper()
	switch runtime.GOOS {
	case "linux":
		return "libm.so.6", "cos", "libm"
	case "darwin":
		return "libSystem.B.dylib", "malloc", "lib"
	default:
		t.Skipf("no system library known for %s", runtime.GOOS)
		return "", "", ""
	}
}

func loadSystemLibrary(t *testing.T) (*Library, string, string) {
	t.Helper()
	name, symbol, prefix := systemLibrary(t)
	lib := New()
	if !lib.Load(name) {
		t.Skipf("%s not available: %v", name, lib.LastError())
	}
	t.Cleanup(func() { lib.Close() })
	return lib, symbol, prefix
}

func TestLoadSystemLibrary(t *testing.T) {
	lib, symbol, _ := loadSystemLibrary(t)

	if !lib.IsLoaded() {
		t.Fatal("IsLoaded() = false after Load()")
	}
	addr, ok := lib.Symbol(symbol)
	if !ok || addr == 0 {
		t.Fatalf("Symbol(%q) = (%d, %v): %v", symbol, addr, ok, lib.LastError())
	}
	if _, ok := lib.Symbol("plcoreNoSuchSymbol"); ok {
		t.Error("Symbol() of a missing export succeeded")
	}
	if !errors.Is(lib.LastError(), ErrSymbolNotFound) {
		t.Errorf("LastError() = %v, want ErrSymbolNotFound", lib.LastError())
	}
}

func TestAbsolutePathOfSearchedLibrary(t *testing.T) {
	lib, symbol, prefix := loadSystemLibrary(t)
	if _, ok := lib.Symbol(symbol); !ok {
		t.Fatalf("Symbol(%q) failed: %v", symbol, lib.LastError())
	}

	got := lib.AbsolutePath()
	if got == "" {
		t.Fatalf("AbsolutePath() is empty: %v", lib.LastError())
	}
	if !filepath.IsAbs(got) {
		t.Errorf("AbsolutePath() = %q, want an absolute path", got)
	}
	if !strings.HasPrefix(filepath.Base(got), prefix) {
		t.Errorf("AbsolutePath() = %q, want a file named %s*", got, prefix)
	}
	if wd, err := os.Getwd(); err == nil && got == filepath.Join(wd, lib.Path()) {
		t.Errorf("AbsolutePath() = %q, resolved against the working directory", got)
	}
}

func TestLoadTwice(t *testing.T) {
	lib, _, _ := loadSystemLibrary(t)
	name := lib.Path()

	if lib.Load(name) {
		t.Fatal("second Load() on the same instance succeeded")
	}
	if !errors.Is(lib.LastError(), ErrAlreadyLoaded) {
		t.Errorf("LastError() = %v, want ErrAlreadyLoaded", lib.LastError())
	}
	if !lib.IsLoaded() {
		t.Error("failed second Load() unloaded the library")
	}
}

func TestUnloadLoadedLibrary(t *testing.T) {
	lib, symbol, _ := loadSystemLibrary(t)

	if !lib.Unload() {
		t.Fatalf("Unload() failed: %v", lib.LastError())
	}
	if lib.IsLoaded() {
		t.Error("IsLoaded() = true after Unload()")
	}
	if got := lib.AbsolutePath(); got != "" {
		t.Errorf("AbsolutePath() after Unload() = %q, want empty", got)
	}
	if _, ok := lib.Symbol(symbol); ok {
		t.Error("Symbol() after Unload() succeeded")
	}
	if err := lib.Close(); err != nil {
		t.Errorf("Close() after Unload() = %v", err)
	}
}
