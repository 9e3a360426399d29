package script

import (
	"fmt"
	"strings"

	"github.com/dshills/plcore/internal/logging"
	lua "github.com/yuin/gopher-lua"
)

// safeModules can be loaded with require.
var safeModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

// removedGlobals are base functions that reach the filesystem or compile
// arbitrary code.
var removedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"collectgarbage",
}

// Sandbox restricts what a script can reach.
type Sandbox struct {
	L   *lua.LState
	log *logging.Logger
}

// NewSandbox creates a sandbox for L. print output goes to log.
func NewSandbox(L *lua.LState, log *logging.Logger) *Sandbox {
	if log == nil {
		log = logging.Nop()
	}
	return &Sandbox{L: L, log: log}
}

// Install removes unsafe globals and replaces require and print.
func (s *Sandbox) Install() {
	for _, name := range removedGlobals {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.L.SetGlobal("require", s.L.NewFunction(s.require))
	s.L.SetGlobal("print", s.L.NewFunction(s.print))
}

// IsSafeModule reports whether require may load name.
func IsSafeModule(name string) bool {
	return safeModules[name]
}

func (s *Sandbox) require(L *lua.LState) int {
	name := L.CheckString(1)
	if !IsSafeModule(name) {
		L.RaiseError("module %q is not available", name)
		return 0
	}
	L.Push(L.GetGlobal(name))
	return 1
}

func (s *Sandbox) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	s.log.Info("%s", strings.Join(parts, "\t"))
	return 0
}

// String describes the sandbox for diagnostics.
func (s *Sandbox) String() string {
	return fmt.Sprintf("sandbox(removed=%s)", strings.Join(removedGlobals, ","))
}
