// Package dynlib loads operating system shared libraries and resolves the
// symbols they export.
//
// A Library represents exactly one load: Load fails if the instance already
// holds a loaded library. Symbol addresses stay valid only while the library
// is loaded.
//
//	lib := dynlib.New()
//	if !lib.Load("/opt/plugins/libPLSound.so") {
//	    log.Printf("load failed: %v", lib.LastError())
//	}
//	defer lib.Close()
//
//	addr, ok := lib.Symbol("PLGetPluginInfo")
//
// On unix systems the loader is purego's dlopen binding, so no cgo toolchain
// is required. On Windows the library is loaded with
// LOAD_WITH_ALTERED_SEARCH_PATH so dependent DLLs are searched next to the
// loaded file first.
package dynlib
