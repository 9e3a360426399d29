package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/plcore/internal/logging"
	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds each call from Go into a script.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps a sandboxed gopher-lua state.
//
// A State is not safe for concurrent use. Calls may nest: a Go function
// invoked by Lua can call back into the same State, and the execution
// timeout covers the outermost call.
type State struct {
	L *lua.LState

	timeout time.Duration
	log     *logging.Logger
	sandbox *Sandbox

	depth  int
	ctx    context.Context
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the timeout for calls into the script.
// Zero disables the timeout.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithStateLogger sets the logger print writes to.
func WithStateLogger(l *logging.Logger) StateOption {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultExecutionTimeout,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)

	s.sandbox = NewSandbox(s.L, s.log)
	s.sandbox.Install()
	return s
}

// openSafeLibraries opens the libraries scripts may use.
// io, os, debug and package are not opened.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	if s.closed {
		return ErrStateClosed
	}
	release := s.enter()
	defer release()

	return s.wrap(s.protect(func() error {
		return s.L.DoFile(path)
	}))
}

// DoString executes Lua source.
func (s *State) DoString(code string) error {
	if s.closed {
		return ErrStateClosed
	}
	release := s.enter()
	defer release()

	return s.wrap(s.protect(func() error {
		return s.L.DoString(code)
	}))
}

// Call calls a global function.
func (s *State) Call(name string, args ...lua.LValue) ([]lua.LValue, error) {
	if s.closed {
		return nil, ErrStateClosed
	}
	fn := s.L.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotFunction, name, fn.Type())
	}
	return s.CallFunction(fn, args...)
}

// CallFunction calls a Lua function value and returns all its results.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) CallFunction(fn lua.LValue, args ...lua.LValue) ([]lua.LValue, error) {
	if s.closed {
		return nil, ErrStateClosed
	}
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: got %s", ErrNotFunction, fn.Type())
	}
	release := s.enter()
	defer release()

	top := s.L.GetTop()
	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(arg)
	}

	err := s.protect(func() error {
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		s.L.SetTop(top)
		return nil, s.wrap(err)
	}

	n := s.L.GetTop() - top
	if n <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		results[i] = s.L.Get(top + i + 1)
	}
	s.L.Pop(n)
	return results, nil
}

// HasFunction reports whether a global function is defined.
func (s *State) HasFunction(name string) bool {
	return !s.closed && s.L.GetGlobal(name).Type() == lua.LTFunction
}

// GetGlobal returns a global variable.
func (s *State) GetGlobal(name string) lua.LValue {
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// Sandbox returns the sandbox of the state.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed
}

// Close releases the Lua state. Further calls return ErrStateClosed.
func (s *State) Close() error {
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// enter starts a call. The outermost call installs the timeout context.
func (s *State) enter() func() {
	s.depth++
	if s.depth > 1 || s.timeout <= 0 {
		return func() { s.depth-- }
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.ctx = ctx
	s.L.SetContext(ctx)
	return func() {
		s.depth--
		s.L.RemoveContext()
		s.ctx = nil
		cancel()
	}
}

// protect runs fn and turns Go panics raised inside Lua calls into errors.
func (s *State) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

func (s *State) wrap(err error) error {
	if err == nil {
		return nil
	}
	if s.ctx != nil && errors.Is(s.ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrExecutionTimeout, s.timeout, err)
	}
	return err
}
