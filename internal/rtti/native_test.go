package rtti

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/dshills/plcore/internal/dynlib"
)

// systemLibraryPath returns the file the loader picks for libm, a shared
// library that exports none of the plugin entry points.
func systemLibraryPath(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skipf("no system library fixture for %s", runtime.GOOS)
	}
	lib := dynlib.New()
	if !lib.Load("libm.so.6") {
		t.Skipf("libm.so.6 not available: %v", lib.LastError())
	}
	defer lib.Close()
	path := lib.AbsolutePath()
	if path == "" {
		t.Fatalf("AbsolutePath() of libm.so.6 is empty: %v", lib.LastError())
	}
	return path
}

func TestOpenNativeWithoutEntryPoints(t *testing.T) {
	path := systemLibraryPath(t)

	bin, err := OpenNative(path)
	if err != nil {
		t.Fatalf("OpenNative(%s) error = %v", path, err)
	}

	if _, ok := bin.IsDebugBuild(); ok {
		t.Error("IsDebugBuild() reported a marker")
	}
	if _, ok := bin.PluginInfo(); ok {
		t.Error("PluginInfo() reported an entry point")
	}
	if mb, ok := bin.(ModuleInfoBinary); ok {
		if name, _, _, _ := mb.ModuleInfo(); name != "" {
			t.Errorf("ModuleInfo() name = %q, want empty", name)
		}
	}
	descs, err := bin.Classes()
	if err != nil || len(descs) != 0 {
		t.Errorf("Classes() = %v, %v, want none", descs, err)
	}

	if err := bin.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := bin.Classes(); !errors.Is(err, ErrBinaryClosed) {
		t.Errorf("Classes() after Close() = %v, want ErrBinaryClosed", err)
	}
	if _, ok := bin.PluginInfo(); ok {
		t.Error("PluginInfo() after Close() reported an entry point")
	}
}

func TestOpenNativeMissingFile(t *testing.T) {
	if _, err := OpenNative(t.TempDir() + "/libmissing.so"); err == nil {
		t.Error("OpenNative() of a missing file succeeded")
	}
}

func TestLoadModuleNativeWithoutEntryPoints(t *testing.T) {
	path := systemLibraryPath(t)
	r, _, buf := newTestRegistry(t)
	events := recordEvents(r)

	if m := r.LoadModule(path, false); m != nil {
		t.Fatalf("LoadModule(%s) = %v, want nil", path, m)
	}
	if !strings.Contains(buf.String(), "PLGetPluginInfo") {
		t.Errorf("log does not name the missing entry point:\n%s", buf.String())
	}
	if len(r.Modules()) != 0 || len(r.Classes()) != 0 || len(*events) != 0 {
		t.Error("failed native load should leave the registry unchanged")
	}

	if m := r.LoadModule(path, true); m != nil {
		t.Fatalf("forced LoadModule(%s) = %v, want nil", path, m)
	}
	if !strings.Contains(buf.String(), "PLIsDebugBuild") {
		t.Errorf("forced load should report the missing build marker:\n%s", buf.String())
	}
}
