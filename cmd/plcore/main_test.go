package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/plcore/internal/rtti"
	"gopkg.in/yaml.v3"
)

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-config", filepath.Join(t.TempDir(), "none.toml")}, args...)
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunVersion(t *testing.T) {
	code, out, _ := runCmd(t, "-version")
	if code != 0 || !strings.HasPrefix(out, "plcore dev") {
		t.Errorf("run(-version) = %d, %q", code, out)
	}
}

func TestRunUsageErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"bad format", []string{"-format", "xml", "classes"}, 2},
		{"bad flag", []string{"-nope"}, 2},
		{"describe without class", []string{"-plugins", dir, "describe"}, 2},
		{"describe unknown class", []string{"-plugins", dir, "describe", "No::Such"}, 1},
		{"invalid build type", []string{"-build-type", "profile", "classes"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, stderr := runCmd(t, tt.args...); code != tt.want {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.want, stderr)
			}
		})
	}
}

func TestRunClasses(t *testing.T) {
	code, out, stderr := runCmd(t, "-plugins", t.TempDir(), "classes")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if !strings.Contains(out, "PLCore::Object") {
		t.Errorf("output = %q", out)
	}
}

func TestRunDescribeYAML(t *testing.T) {
	code, out, stderr := runCmd(t, "-plugins", t.TempDir(), "-format", "yaml", "describe", "PLCore::Object")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}

	var got struct {
		Name    string `yaml:"name"`
		Members []struct {
			Kind string `yaml:"kind"`
			Name string `yaml:"name"`
		} `yaml:"members"`
	}
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if got.Name != "PLCore::Object" || len(got.Members) == 0 {
		t.Errorf("describe = %+v", got)
	}
}

func TestRunCreateLuaPlugin(t *testing.T) {
	dir := t.TempDir()
	lua := `
function PLGetPluginInfo() return 5 end
function PLRegisterClasses(reg)
	reg:class{
		namespace = "Demo", name = "Box", base = "PLCore::Object",
		attributes = { { name = "width", type = "float", default = 1 } },
		constructors = {
			{ name = "Create", signature = "Object*()" },
			{ name = "Sized", signature = "Object*(float)", fn = function(self, w) self:set("width", w) end },
		},
	}
end
`
	desc := `<?xml version="1.0"?>
<Plugin Version="1">
	<Platform Name="` + rtti.HostPlatform().Name + `"><Library>box.lua</Library></Platform>
	<Classes><Class Name="Box" Namespace="Demo" BaseClassName="PLCore::Object" HasConstructor="1" HasDefaultConstructor="1"/></Classes>
</Plugin>`
	if err := os.WriteFile(filepath.Join(dir, "box.lua"), []byte(lua), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "box.plugin"), []byte(desc), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, stderr := runCmd(t, "-plugins", dir, "create", "Demo::Box", "Sized", `Param0="2.5"`)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if !strings.HasPrefix(out, "Demo::Box ") || !strings.Contains(out, "width = 2.5") {
		t.Errorf("output = %q", out)
	}
}
