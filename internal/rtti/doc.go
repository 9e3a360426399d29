// Package rtti implements the class registry and module loader.
//
// A Registry owns every Module and every Class. A Class is a stable handle
// for one fully-qualified class name ("Namespace::Name"); the metadata
// behind it is a Descriptor, which is either a DummyDescriptor (parsed from
// a .plugin file, no executable members) or a RealDescriptor (registered by
// compiled or scripted code).
//
// # Delayed loading
//
// A .plugin descriptor loaded with delayed=true creates a module holding
// dummy classes only; the plugin binary is not opened. The first access to
// a member of a dummy class (attributes, methods, constructors, Create)
// loads the binary. The binary registers real descriptors for the same
// names, which replace the dummies behind their existing Class handles:
//
//	reg := rtti.NewRegistry(rtti.WithLogger(log))
//	reg.ScanPlugins("plugins", true, true)
//
//	cls := reg.GetClass("PLSound::SoundManager") // dummy, nothing loaded yet
//	obj, err := cls.Create()                     // loads the binary, promotes
//
// Handles stay valid across promotion; Class.Generation changes each time
// the descriptor behind a handle is replaced.
//
// # Plugin binaries
//
// Binaries are opened through an Opener chosen by file extension. The
// default opener loads a native shared library and calls its exported
// PLIsDebugBuild, PLGetPluginInfo and class enumeration entry points.
// Other openers (see package script) can be added with RegisterOpener.
//
// # Concurrency
//
// A Registry is not safe for concurrent use. Embedders serialize access.
package rtti
