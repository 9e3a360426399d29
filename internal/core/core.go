// Package core registers the built-in classes every registry starts with.
package core

import (
	"fmt"

	"github.com/dshills/plcore/internal/rtti"
)

// ModuleID is the id of the built-in module.
const ModuleID = 1

// Names of the built-in module and its root class.
const (
	ModuleName      = "PLCore"
	ObjectClassName = "PLCore::Object"
)

// Register adds the built-in module and the PLCore::Object root class to r.
// Plugin classes derive from PLCore::Object to inherit its members.
func Register(r *rtti.Registry) *rtti.Module {
	m := r.CreateModule(ModuleID)
	if m.Name() == "" {
		m.SetModuleInfo(ModuleName, "PixelLight", "MIT", "Built-in classes")
	}
	if r.GetClass(ObjectClassName) == nil {
		r.RegisterClass(ModuleID, objectClass())
	}
	return m
}

func objectClass() *rtti.RealDescriptor {
	return rtti.NewRealDescriptor(
		rtti.ClassInfo{
			Namespace:   "PLCore",
			Name:        "Object",
			Description: "Root of the class hierarchy",
		},
		rtti.NewMethod("GetClass", "string()", getClass, "Returns the full class name"),
		rtti.NewMethod("ToString", "string()", toString, "Returns a printable representation"),
		rtti.NewMethod("IsInstanceOf", "bool(string)", isInstanceOf, "Reports whether the object's class is or derives from a class"),
		rtti.NewConstructor("Create", rtti.DefaultConstructorSignature, create, "Creates an object"),
	)
}

func getClass(obj rtti.Object, _ rtti.Params) (any, error) {
	return obj.Class().FullName(), nil
}

func toString(obj rtti.Object, _ rtti.Params) (any, error) {
	return fmt.Sprintf("%s(%s)", obj.Class().FullName(), obj.ID()), nil
}

func isInstanceOf(obj rtti.Object, params rtti.Params) (any, error) {
	name, _ := params[0].(string)
	c := obj.Class()
	return c.FullName() == name || c.IsDerivedFrom(name), nil
}

func create(c *rtti.Class, _ rtti.Params) (rtti.Object, error) {
	return rtti.NewInstance(c), nil
}
