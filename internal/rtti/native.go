package rtti

import (
	"fmt"

	"github.com/dshills/plcore/internal/dynlib"
	"github.com/ebitengine/purego"
)

// Fields of PLGetClassInfo.
const (
	classInfoNamespace = iota
	classInfoName
	classInfoBaseClass
	classInfoDescription
)

// Fields of PLGetModuleInfo.
const (
	moduleInfoName = iota
	moduleInfoVendor
	moduleInfoLicense
	moduleInfoDescription
)

// OpenNative opens a native shared library plugin.
//
// The library must export
//
//	bool    PLIsDebugBuild(void);              // optional unless forced
//	int32_t PLGetPluginInfo(void);
//
// and may export
//
//	const char* PLGetModuleInfo(int32_t field);
//	int32_t     PLGetClassCount(void);
//	const char* PLGetClassInfo(int32_t index, int32_t field);
//	void*       PLCreateInstance(int32_t index);
//
// Each class becomes a real class. Classes get a default constructor when
// PLCreateInstance is exported.
func OpenNative(path string) (Binary, error) {
	lib := dynlib.New()
	if !lib.Load(path) {
		return nil, lib.LastError()
	}
	return &nativeBinary{lib: lib}, nil
}

type nativeBinary struct {
	lib *dynlib.Library
}

func (b *nativeBinary) bind(fptr any, name string) bool {
	if !b.lib.IsLoaded() {
		return false
	}
	addr, ok := b.lib.Symbol(name)
	if !ok {
		return false
	}
	purego.RegisterFunc(fptr, addr)
	return true
}

func (b *nativeBinary) IsDebugBuild() (bool, bool) {
	var isDebug func() bool
	if !b.bind(&isDebug, "PLIsDebugBuild") {
		return false, false
	}
	return isDebug(), true
}

func (b *nativeBinary) PluginInfo() (int, bool) {
	var info func() int32
	if !b.bind(&info, "PLGetPluginInfo") {
		return 0, false
	}
	return int(info()), true
}

func (b *nativeBinary) ModuleInfo() (name, vendor, license, description string) {
	var info func(int32) string
	if !b.bind(&info, "PLGetModuleInfo") {
		return "", "", "", ""
	}
	return info(moduleInfoName), info(moduleInfoVendor), info(moduleInfoLicense), info(moduleInfoDescription)
}

func (b *nativeBinary) Classes() ([]Descriptor, error) {
	if !b.lib.IsLoaded() {
		return nil, ErrBinaryClosed
	}

	var classInfo func(int32, int32) string
	if !b.bind(&classInfo, "PLGetClassInfo") {
		return nil, nil
	}
	var classCount func() int32
	if !b.bind(&classCount, "PLGetClassCount") {
		return nil, fmt.Errorf("%w: PLGetClassCount", ErrNoEntryPoint)
	}
	var createInstance func(int32) uintptr
	canCreate := b.bind(&createInstance, "PLCreateInstance")

	n := max(classCount(), 0)
	descs := make([]Descriptor, 0, n)
	for i := int32(0); i < n; i++ {
		info := ClassInfo{
			Namespace:     classInfo(i, classInfoNamespace),
			Name:          classInfo(i, classInfoName),
			BaseClassName: classInfo(i, classInfoBaseClass),
			Description:   classInfo(i, classInfoDescription),
		}
		if info.Name == "" {
			return nil, fmt.Errorf("class %d of %s has no name", i, b.lib.Path())
		}

		var members []Member
		if canCreate {
			index := i
			members = append(members, NewConstructor("Create", DefaultConstructorSignature,
				func(c *Class, _ Params) (Object, error) {
					ptr := createInstance(index)
					if ptr == 0 {
						return nil, fmt.Errorf("PLCreateInstance(%d) returned null", index)
					}
					return &NativeObject{Instance: NewInstance(c), ptr: ptr}, nil
				}, "Native default constructor"))
		}
		descs = append(descs, NewRealDescriptor(info, members...))
	}
	return descs, nil
}

func (b *nativeBinary) Close() error {
	return b.lib.Close()
}

// NativeObject is an object created by a native plugin.
type NativeObject struct {
	*Instance
	ptr uintptr
}

// Pointer returns the address of the native object.
func (o *NativeObject) Pointer() uintptr {
	return o.ptr
}
