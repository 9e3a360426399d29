package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/dshills/plcore/internal/app"
	"github.com/dshills/plcore/internal/rtti"
)

type command func(ctx context.Context, a *app.Application, out *printer, args []string) error

var commands = map[string]command{
	"modules":  modulesCommand,
	"classes":  classesCommand,
	"describe": describeCommand,
	"create":   createCommand,
	"watch":    watchCommand,
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func modulesCommand(_ context.Context, a *app.Application, out *printer, _ []string) error {
	var list []moduleView
	_ = a.Do(func(r *rtti.Registry) error {
		for _, m := range r.Modules() {
			list = append(list, newModuleView(m))
		}
		return nil
	})
	return out.modules(list)
}

func classesCommand(_ context.Context, a *app.Application, out *printer, args []string) error {
	fs := flag.NewFlagSet("classes", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var q rtti.ClassQuery
	fs.StringVar(&q.BaseClass, "base", "", "Only classes derived from this class")
	fs.BoolVar(&q.Recursive, "recursive", false, "Include indirectly derived classes")
	fs.BoolVar(&q.IncludeBase, "include-base", false, "Include the base class itself")
	fs.BoolVar(&q.ExcludeAbstract, "concrete", false, "Only classes with constructors")
	fs.IntVar(&q.ModuleID, "module", 0, "Only classes of this module id")
	if err := fs.Parse(args); err != nil {
		return &usageError{msg: "classes: " + err.Error()}
	}

	var list []classView
	_ = a.Do(func(r *rtti.Registry) error {
		for _, c := range r.GetClasses(q) {
			list = append(list, newClassView(c))
		}
		return nil
	})
	return out.classes(list)
}

func describeCommand(_ context.Context, a *app.Application, out *printer, args []string) error {
	if len(args) != 1 {
		return &usageError{msg: "describe: expected one class name"}
	}

	var view *classDetail
	err := a.Do(func(r *rtti.Registry) error {
		c := r.GetClass(args[0])
		if c == nil {
			return fmt.Errorf("class %s not found", args[0])
		}
		view = newClassDetail(c)
		return nil
	})
	if err != nil {
		return err
	}
	return out.detail(view)
}

func createCommand(_ context.Context, a *app.Application, out *printer, args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return &usageError{msg: "create: expected <class> [constructor] [params]"}
	}

	var view *objectView
	err := a.Do(func(r *rtti.Registry) error {
		c := r.GetClass(args[0])
		if c == nil {
			return fmt.Errorf("class %s not found", args[0])
		}

		var obj rtti.Object
		var err error
		switch len(args) {
		case 1:
			obj, err = c.Create()
		case 2:
			obj, err = c.CreateByNameString(args[1], "")
		default:
			obj, err = c.CreateByNameString(args[1], args[2])
		}
		if err != nil {
			return err
		}
		view = newObjectView(obj)
		return nil
	})
	if err != nil {
		return err
	}
	return out.object(view)
}

func watchCommand(ctx context.Context, a *app.Application, _ *printer, args []string) error {
	if len(args) != 0 {
		return &usageError{msg: "watch: unexpected arguments"}
	}
	return a.Watch(ctx)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
