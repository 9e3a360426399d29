package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dshills/plcore/internal/rtti"
	"gopkg.in/yaml.v3"
)

type moduleView struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Vendor   string `yaml:"vendor,omitempty"`
	License  string `yaml:"license,omitempty"`
	Filename string `yaml:"filename,omitempty"`
	Plugin   bool   `yaml:"plugin"`
	Loaded   bool   `yaml:"loaded"`
	Classes  int    `yaml:"classes"`
}

func newModuleView(m *rtti.Module) moduleView {
	return moduleView{
		ID:       m.ID(),
		Name:     m.Name(),
		Vendor:   m.Vendor(),
		License:  m.License(),
		Filename: m.Filename(),
		Plugin:   m.IsPlugin(),
		Loaded:   m.IsLoaded(),
		Classes:  len(m.Classes()),
	}
}

type classView struct {
	Name   string `yaml:"name"`
	Base   string `yaml:"base,omitempty"`
	Module int    `yaml:"module"`
	Dummy  bool   `yaml:"dummy"`
}

func newClassView(c *rtti.Class) classView {
	return classView{
		Name:   c.FullName(),
		Base:   c.BaseClassName(),
		Module: c.ModuleID(),
		Dummy:  c.IsDummy(),
	}
}

type memberView struct {
	Kind      string `yaml:"kind"`
	Name      string `yaml:"name"`
	Signature string `yaml:"signature"`
}

type classDetail struct {
	classView   `yaml:",inline"`
	Description string            `yaml:"description,omitempty"`
	Properties  map[string]string `yaml:"properties,omitempty"`
	Members     []memberView      `yaml:"members"`
}

// newClassDetail promotes a dummy class to list its members.
func newClassDetail(c *rtti.Class) *classDetail {
	d := &classDetail{
		Description: c.Description(),
		Properties:  c.Properties(),
	}
	for _, a := range c.Attributes() {
		d.Members = append(d.Members, memberView{"attribute", a.Name(), a.Type()})
	}
	for _, m := range c.Methods() {
		d.Members = append(d.Members, memberView{"method", m.Name(), m.Signature()})
	}
	for _, s := range c.Signals() {
		d.Members = append(d.Members, memberView{"signal", s.Name(), s.Signature()})
	}
	for _, s := range c.Slots() {
		d.Members = append(d.Members, memberView{"slot", s.Name(), s.Signature()})
	}
	for _, k := range c.Constructors() {
		d.Members = append(d.Members, memberView{"constructor", k.Name(), k.Signature()})
	}
	d.classView = newClassView(c)
	return d
}

type objectView struct {
	Class      string         `yaml:"class"`
	ID         string         `yaml:"id"`
	Attributes map[string]any `yaml:"attributes"`
}

func newObjectView(obj rtti.Object) *objectView {
	v := &objectView{
		Class:      obj.Class().FullName(),
		ID:         obj.ID().String(),
		Attributes: make(map[string]any),
	}
	for _, a := range obj.Class().Attributes() {
		val, _ := obj.Attribute(a.Name())
		v.Attributes[a.Name()] = val
	}
	return v
}

// printer renders command results as aligned text or YAML.
type printer struct {
	w    io.Writer
	yaml bool
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return &printer{w: w}, nil
	case "yaml":
		return &printer{w: w, yaml: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func (p *printer) encode(v any) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (p *printer) table(header string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (p *printer) modules(list []moduleView) error {
	if p.yaml {
		return p.encode(list)
	}
	rows := make([][]string, 0, len(list))
	for _, m := range list {
		state := "loaded"
		if !m.Loaded {
			state = "delayed"
		}
		rows = append(rows, []string{fmt.Sprint(m.ID), m.Name, state, fmt.Sprint(m.Classes), m.Filename})
	}
	return p.table("ID\tNAME\tSTATE\tCLASSES\tFILE", rows)
}

func (p *printer) classes(list []classView) error {
	if p.yaml {
		return p.encode(list)
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		kind := "real"
		if c.Dummy {
			kind = "dummy"
		}
		rows = append(rows, []string{c.Name, c.Base, fmt.Sprint(c.Module), kind})
	}
	return p.table("CLASS\tBASE\tMODULE\tKIND", rows)
}

func (p *printer) detail(d *classDetail) error {
	if p.yaml {
		return p.encode(d)
	}
	fmt.Fprintf(p.w, "%s (module %d)\n", d.Name, d.Module)
	if d.Base != "" {
		fmt.Fprintf(p.w, "  base: %s\n", d.Base)
	}
	if d.Description != "" {
		fmt.Fprintf(p.w, "  %s\n", d.Description)
	}
	for _, k := range sortedKeys(d.Properties) {
		fmt.Fprintf(p.w, "  property %s = %s\n", k, d.Properties[k])
	}
	rows := make([][]string, 0, len(d.Members))
	for _, m := range d.Members {
		rows = append(rows, []string{m.Kind, m.Name, m.Signature})
	}
	return p.table("KIND\tNAME\tSIGNATURE", rows)
}

func (p *printer) object(v *objectView) error {
	if p.yaml {
		return p.encode(v)
	}
	fmt.Fprintf(p.w, "%s %s\n", v.Class, v.ID)
	names := make(map[string]string, len(v.Attributes))
	for k, val := range v.Attributes {
		names[k] = fmt.Sprint(val)
	}
	for _, k := range sortedKeys(names) {
		fmt.Fprintf(p.w, "  %s = %s\n", k, names[k])
	}
	return nil
}
