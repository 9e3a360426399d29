package script

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dshills/plcore/internal/logging"
	lua "github.com/yuin/gopher-lua"
)

func TestStateDoString(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString(`x = 1 + 2`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := s.GetGlobal("x"); got != lua.LNumber(3) {
		t.Errorf("x = %v, want 3", got)
	}
}

func TestStateCall(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString(`function pair(a, b) return b, a end`); err != nil {
		t.Fatal(err)
	}
	ret, err := s.Call("pair", lua.LNumber(1), lua.LString("two"))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(ret) != 2 || ret[0] != lua.LString("two") || ret[1] != lua.LNumber(1) {
		t.Errorf("Call = %v", ret)
	}

	ret, err = s.Call("print")
	if err != nil || len(ret) != 0 {
		t.Errorf("Call(print) = %v, %v", ret, err)
	}

	if _, err := s.Call("missing"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(missing) error = %v, want ErrNotFunction", err)
	}
}

func TestStateSyntaxError(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString(`this is not lua`); err == nil {
		t.Error("expected syntax error")
	}
}

func TestStateClosed(t *testing.T) {
	s := NewState()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if !s.IsClosed() {
		t.Error("IsClosed = false")
	}
	if err := s.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString error = %v, want ErrStateClosed", err)
	}
	if _, err := s.Call("x"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call error = %v, want ErrStateClosed", err)
	}
	if s.GetGlobal("x") != lua.LNil {
		t.Error("GetGlobal on closed state should be nil")
	}
}

func TestStateTimeout(t *testing.T) {
	s := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer s.Close()

	err := s.DoString(`while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("error = %v, want ErrExecutionTimeout", err)
	}
}

func TestSandbox(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"dofile removed", `dofile("x.lua")`, true},
		{"loadfile removed", `loadfile("x.lua")`, true},
		{"load removed", `load("return 1")`, true},
		{"io not opened", `io.write("x")`, true},
		{"os not opened", `os.exit(1)`, true},
		{"require io", `require("io")`, true},
		{"require string", `local s = require("string"); assert(s.upper("a") == "A")`, false},
		{"math available", `assert(math.floor(1.5) == 1)`, false},
		{"table available", `local t = {}; table.insert(t, 1); assert(#t == 1)`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			defer s.Close()

			err := s.DoString(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("DoString error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSandboxPrint(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})

	s := NewState(WithStateLogger(log))
	defer s.Close()

	if err := s.DoString(`print("hello", 42)`); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "hello\t42") {
		t.Errorf("log = %q, want printed text", buf.String())
	}
}

func TestIsSafeModule(t *testing.T) {
	for name, want := range map[string]bool{"string": true, "math": true, "io": false, "os": false} {
		if got := IsSafeModule(name); got != want {
			t.Errorf("IsSafeModule(%q) = %v, want %v", name, got, want)
		}
	}
}
