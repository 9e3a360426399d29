//go:build darwin || freebsd || linux

package dynlib

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// rtldDILinkMap is RTLD_DI_LINKMAP on glibc and FreeBSD.
const rtldDILinkMap = 2

// linkMap mirrors the leading fields of struct link_map.
type linkMap struct {
	addr uintptr
	name *byte
}

// dlInfo mirrors Dl_info.
type dlInfo struct {
	fname *byte
	fbase uintptr
	sname *byte
	saddr uintptr
}

var (
	loaderOnce sync.Once
	dlinfo     func(handle uintptr, request int32, out **linkMap) int32
	dladdr     func(addr uintptr, info *dlInfo) int32
)

func resolveLoader() {
	loaderOnce.Do(func() {
		if sym, err := purego.Dlsym(purego.RTLD_DEFAULT, "dlinfo"); err == nil && sym != 0 {
			purego.RegisterFunc(&dlinfo, sym)
		}
		if sym, err := purego.Dlsym(purego.RTLD_DEFAULT, "dladdr"); err == nil && sym != 0 {
			purego.RegisterFunc(&dladdr, sym)
		}
	})
}

func open(path string) (uintptr, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("dlopen %s failed: %w", path, err)
	}
	return handle, nil
}

func lookup(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func release(handle uintptr) error {
	if err := purego.Dlclose(handle); err != nil {
		return fmt.Errorf("dlclose failed: %w", err)
	}
	return nil
}

// modulePath asks the dynamic loader which file backs handle: dlinfo on the
// handle first, then dladdr on a symbol resolved from it. The filesystem is
// consulted only for paths that name a file, never for bare library names
// the loader found through its search path.
func modulePath(handle uintptr, path string, anchor uintptr) (string, error) {
	resolveLoader()

	if dlinfo != nil {
		var lm *linkMap
		if dlinfo(handle, rtldDILinkMap, &lm) == 0 && lm != nil {
			if name := goString(lm.name); name != "" {
				return canonical(name)
			}
		}
	}

	if dladdr != nil && anchor != 0 {
		var info dlInfo
		if dladdr(anchor, &info) != 0 {
			if name := goString(info.fname); name != "" {
				return canonical(name)
			}
		}
	}

	if !strings.ContainsRune(path, filepath.Separator) {
		return "", errors.New("loader does not report the path of " + path)
	}
	return canonical(path)
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
