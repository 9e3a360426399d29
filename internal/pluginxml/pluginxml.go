package pluginxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Extension is the file extension of plugin descriptors.
const Extension = ".plugin"

// CurrentVersion is the descriptor format version this package reads.
const CurrentVersion = 1

// ErrNotPlugin is returned when the document root is not a Plugin element.
var ErrNotPlugin = errors.New("document is not a plugin descriptor")

// VersionError reports a Version attribute that is not an integer.
type VersionError struct {
	Value string
	Err   error
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("invalid plugin version %q: %v", e.Value, e.Err)
}

func (e *VersionError) Unwrap() error {
	return e.Err
}

// Plugin is a parsed plugin descriptor.
type Plugin struct {
	XMLName xml.Name `xml:"Plugin"`

	VersionAttr string `xml:"Version,attr"`

	Active              string `xml:"Active"`
	ForceBuildTypeMatch string `xml:"ForceBuildTypeMatch"`
	Delayed             string `xml:"Delayed"`

	Name        string `xml:"Name"`
	Vendor      string `xml:"Vendor"`
	License     string `xml:"License"`
	Description string `xml:"Description"`

	Platforms []Platform `xml:"Platform"`
	Classes   []Class    `xml:"Classes>Class"`
}

// Platform lists the libraries for one platform.
type Platform struct {
	Name            string    `xml:"Name,attr"`
	BitArchitecture string    `xml:"BitArchitecture,attr"`
	Libraries       []Library `xml:"Library"`
}

// Library is the binary for one build type. Path is relative to the
// descriptor unless absolute.
type Library struct {
	Type string `xml:"Type,attr"`
	Path string `xml:",chardata"`
}

// Class declares one class of the plugin.
type Class struct {
	Name                      string     `xml:"Name,attr"`
	Namespace                 string     `xml:"Namespace,attr"`
	BaseClassName             string     `xml:"BaseClassName,attr"`
	Description               string     `xml:"Description,attr"`
	HasConstructorFlag        string     `xml:"HasConstructor,attr"`
	HasDefaultConstructorFlag string     `xml:"HasDefaultConstructor,attr"`
	Properties                []Property `xml:"Properties>Property"`
}

// Property is a class property.
type Property struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
}

// Parse reads a descriptor.
func Parse(r io.Reader) (*Plugin, error) {
	var p Plugin
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		var se xml.UnmarshalError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %v", ErrNotPlugin, err)
		}
		return nil, fmt.Errorf("parse plugin descriptor: %w", err)
	}
	return &p, nil
}

// ParseFile reads the descriptor at path.
func ParseFile(path string) (*Plugin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Version returns the format version. A missing Version attribute reads
// as 0.
func (p *Plugin) Version() (int, error) {
	s := strings.TrimSpace(p.VersionAttr)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &VersionError{Value: p.VersionAttr, Err: err}
	}
	return v, nil
}

// IsActive reports the Active flag, true when absent.
func (p *Plugin) IsActive() bool {
	return parseBool(p.Active, true)
}

// ForceBuildType reports the ForceBuildTypeMatch flag, false when absent.
func (p *Plugin) ForceBuildType() bool {
	return parseBool(p.ForceBuildTypeMatch, false)
}

// IsDelayed reports the Delayed flag, def when absent.
func (p *Plugin) IsDelayed(def bool) bool {
	return parseBool(p.Delayed, def)
}

// Libraries returns the library paths for a platform name, pointer width
// and build type ("Debug" or "Release"), in document order.
// Platform names and library types compare case-insensitively; a Platform
// without BitArchitecture matches every width and a Library without Type
// matches every build type.
func (p *Plugin) Libraries(platform string, bits int, buildType string) []string {
	var out []string
	for _, pl := range p.Platforms {
		if !pl.Matches(platform, bits) {
			continue
		}
		for _, lib := range pl.Libraries {
			path := strings.TrimSpace(lib.Path)
			if path == "" {
				continue
			}
			if lib.Type == "" || strings.EqualFold(strings.TrimSpace(lib.Type), buildType) {
				out = append(out, path)
			}
		}
	}
	return out
}

// Matches reports whether the platform element applies to the host.
func (pl Platform) Matches(name string, bits int) bool {
	if !strings.EqualFold(strings.TrimSpace(pl.Name), name) {
		return false
	}
	b := strings.TrimSpace(pl.BitArchitecture)
	if b == "" {
		return true
	}
	n, err := strconv.Atoi(b)
	return err == nil && n == bits
}

// FullName returns "Namespace::Name".
func (c Class) FullName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "::" + c.Name
}

// HasConstructor reports the HasConstructor attribute.
func (c Class) HasConstructor() bool {
	return parseBool(c.HasConstructorFlag, false)
}

// HasDefaultConstructor reports the HasDefaultConstructor attribute.
func (c Class) HasDefaultConstructor() bool {
	return parseBool(c.HasDefaultConstructorFlag, false)
}

// PropertyMap returns the class properties by name.
func (c Class) PropertyMap() map[string]string {
	out := make(map[string]string, len(c.Properties))
	for _, prop := range c.Properties {
		out[prop.Name] = strings.TrimSpace(prop.Value)
	}
	return out
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
