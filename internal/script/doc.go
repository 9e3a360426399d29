// Package script implements plugin binaries written in Lua.
//
// A Lua plugin binary is a script run in a sandboxed gopher-lua state. It
// defines the same entry points a native plugin exports, as globals:
//
//	function PLIsDebugBuild() return false end
//	function PLGetPluginInfo() return 42 end
//
//	PLModuleInfo = { name = "Shapes", vendor = "Acme" }
//
//	function PLRegisterClasses(reg)
//	    reg:class{
//	        namespace = "Shapes", name = "Circle", base = "PLCore::Object",
//	        attributes = { { name = "radius", type = "float", default = 1 } },
//	        methods = {
//	            { name = "area", signature = "float()", fn = function(self)
//	                local r = self:get("radius")
//	                return math.pi * r * r
//	            end },
//	        },
//	        constructors = { { name = "Create", signature = "Object*()" } },
//	    }
//	end
//
// Methods, slots and constructor initializers receive the object as an
// userdata with get, set, call, emit, connect, id and class methods.
//
// # Sandbox
//
// Scripts get the base, table, string and math libraries only. dofile,
// loadfile and load are removed, require is limited to the built-in safe
// modules and print writes to the plugin logger. Every call from Go into
// the script runs under an execution timeout.
//
// Register the opener for the .lua extension:
//
//	reg.RegisterOpener(".lua", script.NewOpener(log))
package script
