package rtti

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Object is an instance of a registered class.
type Object interface {
	// Class returns the handle of the object's class.
	Class() *Class

	// ID returns the object's unique identifier.
	ID() uuid.UUID

	// Attribute returns the current value of an attribute.
	Attribute(name string) (any, bool)

	// SetAttribute sets an attribute declared by the object's class.
	SetAttribute(name string, value any) error
}

type connection struct {
	target Object
	slot   string
}

// Instance is the default Object implementation. Attributes start at the
// defaults declared by the class; signals are delivered synchronously to
// connected slots in connection order.
type Instance struct {
	class *Class
	id    uuid.UUID
	attrs map[string]any
	conns map[string][]connection
}

// NewInstance creates an object of class c.
func NewInstance(c *Class) *Instance {
	o := &Instance{
		class: c,
		id:    uuid.New(),
		attrs: make(map[string]any),
		conns: make(map[string][]connection),
	}
	if c != nil {
		for _, a := range c.Attributes() {
			o.attrs[a.Name()] = a.Default()
		}
	}
	return o
}

// Class returns the object's class handle.
func (o *Instance) Class() *Class {
	return o.class
}

// ID returns the object's unique identifier.
func (o *Instance) ID() uuid.UUID {
	return o.id
}

// Attribute returns the current value of an attribute.
func (o *Instance) Attribute(name string) (any, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

// Attributes returns a copy of all attribute values.
func (o *Instance) Attributes() map[string]any {
	out := make(map[string]any, len(o.attrs))
	for k, v := range o.attrs {
		out[k] = v
	}
	return out
}

// SetAttribute sets an attribute declared by the object's class.
func (o *Instance) SetAttribute(name string, value any) error {
	if o.class == nil {
		return fmt.Errorf("%w: set %s", ErrNoClass, name)
	}
	a := o.class.Attribute(name)
	if a == nil {
		return fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, o.class.FullName(), name)
	}
	if !a.Accepts(value) {
		return fmt.Errorf("%w: %s.%s is %s, got %s", ErrAttributeType, o.class.FullName(), name, a.Type(), TypeOf(value))
	}
	if a.Type() == TypeFloat {
		if f, ok := toFloat(value); ok {
			value = f
		}
	}
	o.attrs[name] = value
	return nil
}

// Connect delivers every emission of signal to slot on target.
// The slot must take the same parameters as the signal.
func (o *Instance) Connect(signal string, target Object, slot string) error {
	if o.class == nil {
		return fmt.Errorf("%w: connect %s", ErrNoClass, signal)
	}
	sig := o.class.Signal(signal)
	if sig == nil {
		return fmt.Errorf("%w: %s.%s", ErrNoSignal, o.class.FullName(), signal)
	}
	if target == nil {
		return ErrNilObject
	}
	if target.Class() == nil {
		return fmt.Errorf("%w: connect target of %s", ErrNoClass, signal)
	}
	sl := target.Class().Slot(slot)
	if sl == nil {
		return fmt.Errorf("%w: slot %s.%s", ErrNoMethod, target.Class().FullName(), slot)
	}
	if sig.sigErr != nil || sl.sigErr != nil ||
		strings.Join(sig.sig.Params, ",") != strings.Join(sl.sig.Params, ",") {
		return fmt.Errorf("%w: signal %s, slot %s", ErrSignatureMismatch, sig.Signature(), sl.Signature())
	}

	o.conns[signal] = append(o.conns[signal], connection{target: target, slot: slot})
	return nil
}

// Disconnect removes a connection made with Connect.
// Returns false if no such connection exists.
func (o *Instance) Disconnect(signal string, target Object, slot string) bool {
	conns := o.conns[signal]
	for i, c := range conns {
		if c.target == target && c.slot == slot {
			o.conns[signal] = slices.Delete(conns, i, i+1)
			return true
		}
	}
	return false
}

// Emit calls every slot connected to signal with params.
// All slots are called even if some fail; their errors are joined.
func (o *Instance) Emit(signal string, params Params) error {
	if o.class == nil {
		return fmt.Errorf("%w: emit %s", ErrNoClass, signal)
	}
	sig := o.class.Signal(signal)
	if sig == nil {
		return fmt.Errorf("%w: %s.%s", ErrNoSignal, o.class.FullName(), signal)
	}
	if !sig.Accepts(params) {
		return fmt.Errorf("%w: %s emitted with %s", ErrSignatureMismatch, sig.Signature(), params.Signature(TypeVoid))
	}

	conns := slices.Clone(o.conns[signal])
	var errs []error
	for _, c := range conns {
		if _, err := c.target.Class().CallSlot(c.target, c.slot, params); err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", c.target.Class().FullName(), c.slot, err))
		}
	}
	return errors.Join(errs...)
}
