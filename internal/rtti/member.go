package rtti

import "fmt"

// MemberKind identifies the kind of a class member.
type MemberKind int

const (
	// MemberAttribute is a typed value stored on each object.
	MemberAttribute MemberKind = iota
	// MemberMethod is a callable function.
	MemberMethod
	// MemberSignal is an event source objects can emit.
	MemberSignal
	// MemberSlot is a callable that can be connected to signals.
	MemberSlot
	// MemberConstructor creates objects of the class.
	MemberConstructor
)

// String returns a string representation of the member kind.
func (k MemberKind) String() string {
	switch k {
	case MemberAttribute:
		return "attribute"
	case MemberMethod:
		return "method"
	case MemberSignal:
		return "signal"
	case MemberSlot:
		return "slot"
	case MemberConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

// Member is a named element of a class.
type Member interface {
	Name() string
	Kind() MemberKind
	Description() string
}

type memberInfo struct {
	name        string
	description string
}

// Name returns the member name.
func (m memberInfo) Name() string { return m.name }

// Description returns the member description.
func (m memberInfo) Description() string { return m.description }

// Attribute is a typed per-object value with a default.
type Attribute struct {
	memberInfo
	typ string
	def any
}

// NewAttribute creates an attribute declaration.
func NewAttribute(name, typ string, def any, description string) *Attribute {
	if typ == "" {
		typ = TypeVar
	}
	return &Attribute{memberInfo: memberInfo{name, description}, typ: typ, def: def}
}

// Kind returns MemberAttribute.
func (a *Attribute) Kind() MemberKind { return MemberAttribute }

// Type returns the attribute's type name.
func (a *Attribute) Type() string { return a.typ }

// Default returns the value new objects start with.
func (a *Attribute) Default() any { return a.def }

// Accepts reports whether v can be stored in the attribute.
func (a *Attribute) Accepts(v any) bool {
	return Signature{Params: []string{a.typ}}.Accepts(Params{v})
}

// Func implements a method or slot. obj is the receiver.
type Func func(obj Object, params Params) (any, error)

type callable struct {
	memberInfo
	signature string
	sig       Signature
	sigErr    error
	fn        Func
}

func newCallable(name, signature string, fn Func, description string) callable {
	sig, err := ParseSignature(signature)
	return callable{
		memberInfo: memberInfo{name, description},
		signature:  signature,
		sig:        sig,
		sigErr:     err,
		fn:         fn,
	}
}

// Signature returns the declared signature.
func (c *callable) Signature() string { return c.signature }

// Call invokes the member on obj after checking params against the
// signature.
func (c *callable) Call(obj Object, params Params) (any, error) {
	if c.sigErr != nil {
		return nil, c.sigErr
	}
	if !c.sig.Accepts(params) {
		return nil, fmt.Errorf("%w: %s called with %s", ErrSignatureMismatch, c.signature, params.Signature(c.sig.Return))
	}
	if c.fn == nil {
		return nil, fmt.Errorf("%w: %s has no implementation", ErrNoMethod, c.name)
	}
	return c.fn(obj, c.sig.Coerce(params))
}

// Method is a callable class member.
type Method struct {
	callable
}

// NewMethod creates a method declaration. An invalid signature is reported
// when the method is called.
func NewMethod(name, signature string, fn Func, description string) *Method {
	return &Method{newCallable(name, signature, fn, description)}
}

// Kind returns MemberMethod.
func (m *Method) Kind() MemberKind { return MemberMethod }

// Slot is a callable class member that signals can be connected to.
type Slot struct {
	callable
}

// NewSlot creates a slot declaration.
func NewSlot(name, signature string, fn Func, description string) *Slot {
	return &Slot{newCallable(name, signature, fn, description)}
}

// Kind returns MemberSlot.
func (s *Slot) Kind() MemberKind { return MemberSlot }

// Signal is an event an object can emit to connected slots.
type Signal struct {
	memberInfo
	signature string
	sig       Signature
	sigErr    error
}

// NewSignal creates a signal declaration.
func NewSignal(name, signature, description string) *Signal {
	sig, err := ParseSignature(signature)
	return &Signal{memberInfo: memberInfo{name, description}, signature: signature, sig: sig, sigErr: err}
}

// Kind returns MemberSignal.
func (s *Signal) Kind() MemberKind { return MemberSignal }

// Signature returns the declared signature.
func (s *Signal) Signature() string { return s.signature }

// Accepts reports whether params can be emitted through the signal.
func (s *Signal) Accepts(params Params) bool {
	return s.sigErr == nil && s.sig.Accepts(params)
}

// ConstructorFunc creates an object of class c.
type ConstructorFunc func(c *Class, params Params) (Object, error)

// Constructor creates objects of a class.
type Constructor struct {
	memberInfo
	signature string
	sig       Signature
	sigErr    error
	fn        ConstructorFunc
}

// NewConstructor creates a constructor declaration.
func NewConstructor(name, signature string, fn ConstructorFunc, description string) *Constructor {
	sig, err := ParseSignature(signature)
	return &Constructor{
		memberInfo: memberInfo{name, description},
		signature:  signature,
		sig:        sig,
		sigErr:     err,
		fn:         fn,
	}
}

// Kind returns MemberConstructor.
func (k *Constructor) Kind() MemberKind { return MemberConstructor }

// Signature returns the declared signature.
func (k *Constructor) Signature() string { return k.signature }

// IsDefault reports whether the constructor takes no parameters.
func (k *Constructor) IsDefault() bool {
	return k.sigErr == nil && k.sig.String() == DefaultConstructorSignature
}

// Accepts reports whether the constructor can be invoked with params.
func (k *Constructor) Accepts(params Params) bool {
	return k.sigErr == nil && k.sig.Return == TypeObject && k.sig.Accepts(params)
}

// Invoke creates an object of class c.
func (k *Constructor) Invoke(c *Class, params Params) (Object, error) {
	if !k.Accepts(params) {
		return nil, fmt.Errorf("%w: %s called with %s", ErrSignatureMismatch, k.signature, params.Signature(TypeObject))
	}
	if k.fn == nil {
		return nil, fmt.Errorf("%w: %s has no implementation", ErrNoConstructor, k.name)
	}
	return k.fn(c, k.sig.Coerce(params))
}

// InvokeStrings creates an object from string arguments converted to the
// constructor's parameter types.
func (k *Constructor) InvokeStrings(c *Class, args []string) (Object, error) {
	if k.sigErr != nil {
		return nil, k.sigErr
	}
	params, err := k.sig.FromStrings(args)
	if err != nil {
		return nil, err
	}
	return k.Invoke(c, params)
}
