package rtti

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Parameter type names used in signatures.
const (
	TypeVoid   = "void"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeString = "string"
	TypeBool   = "bool"
	TypeObject = "Object*"
	TypeVar    = "var"
)

// DefaultConstructorSignature is the signature of a constructor taking no
// parameters.
const DefaultConstructorSignature = "Object*()"

const maxParams = 64

// Params is an ordered list of call parameters.
type Params []any

// TypeOf returns the signature type name for a parameter value.
func TypeOf(v any) string {
	if v == nil {
		return TypeVar
	}
	if _, ok := v.(Object); ok {
		return TypeObject
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt
	case reflect.Float32, reflect.Float64:
		return TypeFloat
	case reflect.String:
		return TypeString
	case reflect.Bool:
		return TypeBool
	default:
		return TypeVar
	}
}

// Types returns the type name of every parameter.
func (p Params) Types() []string {
	types := make([]string, len(p))
	for i, v := range p {
		types[i] = TypeOf(v)
	}
	return types
}

// Signature renders the signature a function taking p and returning ret
// would have, e.g. "Object*(int,string)".
func (p Params) Signature(ret string) string {
	return ret + "(" + strings.Join(p.Types(), ",") + ")"
}

// Signature is a parsed function signature.
type Signature struct {
	Return string
	Params []string
}

// ParseSignature parses a signature of the form "ret(type,type,...)".
// An empty return type is read as void.
func ParseSignature(s string) (Signature, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Signature{}, fmt.Errorf("%w: %q", ErrInvalidSignature, s)
	}

	sig := Signature{Return: strings.TrimSpace(s[:open])}
	if sig.Return == "" {
		sig.Return = TypeVoid
	}

	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if inner == "" {
		return sig, nil
	}
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.ContainsAny(part, "()") {
			return Signature{}, fmt.Errorf("%w: %q", ErrInvalidSignature, s)
		}
		sig.Params = append(sig.Params, part)
	}
	return sig, nil
}

// String renders the signature in canonical form.
func (s Signature) String() string {
	return s.Return + "(" + strings.Join(s.Params, ",") + ")"
}

// Accepts reports whether p can be passed to a function with this
// signature. A var parameter accepts any value and a float parameter
// accepts integers.
func (s Signature) Accepts(p Params) bool {
	if len(p) != len(s.Params) {
		return false
	}
	for i, want := range s.Params {
		got := TypeOf(p[i])
		switch {
		case want == TypeVar, want == got:
		case want == TypeFloat && got == TypeInt:
		case want == TypeObject && p[i] == nil:
		default:
			return false
		}
	}
	return true
}

// Coerce converts integer arguments passed to float parameters.
// p must be accepted by s.
func (s Signature) Coerce(p Params) Params {
	out := make(Params, len(p))
	copy(out, p)
	for i, want := range s.Params {
		if want != TypeFloat {
			continue
		}
		if f, ok := toFloat(out[i]); ok {
			out[i] = f
		}
	}
	return out
}

// FromStrings converts string arguments to the parameter types of s.
// Missing trailing arguments take the zero value of their type.
func (s Signature) FromStrings(args []string) (Params, error) {
	if len(args) > len(s.Params) {
		return nil, fmt.Errorf("%w: %d arguments for %s", ErrSignatureMismatch, len(args), s)
	}

	out := make(Params, len(s.Params))
	for i, typ := range s.Params {
		if i >= len(args) {
			out[i] = zeroValue(typ)
			continue
		}
		v, err := fromString(typ, args[i])
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %d of %s: %v", ErrSignatureMismatch, i, s, err)
		}
		out[i] = v
	}
	return out, nil
}

func zeroValue(typ string) any {
	switch typ {
	case TypeInt:
		return 0
	case TypeFloat:
		return 0.0
	case TypeString:
		return ""
	case TypeBool:
		return false
	default:
		return nil
	}
}

func fromString(typ, s string) (any, error) {
	switch typ {
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, err
		}
		return int(n), nil
	case TypeFloat:
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	case TypeBool:
		return parseBool(s), nil
	case TypeObject:
		if s == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot convert %q to %s", s, typ)
	default:
		return s, nil
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// ParseParamString parses a parameter string of name="value" pairs such as
//
//	Param0="Hello" Param1="42"
//
// into string parameters. When every name has the form ParamN the values
// are placed by N (gaps become empty strings); otherwise they are returned
// in the order they appear. Unquoted values end at the next blank.
func ParseParamString(s string) (Params, error) {
	type pair struct {
		name, value string
	}
	var pairs []pair

	i := 0
	for {
		for i < len(s) && isBlank(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}

		start := i
		for i < len(s) && s[i] != '=' && !isBlank(s[i]) {
			i++
		}
		name := s[start:i]
		if name == "" || i >= len(s) || s[i] != '=' {
			return nil, fmt.Errorf("%w: expected name=value at offset %d", ErrInvalidParams, start)
		}
		i++

		var value strings.Builder
		if i < len(s) && s[i] == '"' {
			i++
			closed := false
			for i < len(s) {
				c := s[i]
				if c == '\\' && i+1 < len(s) {
					value.WriteByte(s[i+1])
					i += 2
					continue
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				value.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("%w: unterminated value for %s", ErrInvalidParams, name)
			}
		} else {
			for i < len(s) && !isBlank(s[i]) {
				value.WriteByte(s[i])
				i++
			}
		}
		pairs = append(pairs, pair{name: name, value: value.String()})
	}

	indexed := make(map[int]string, len(pairs))
	for _, p := range pairs {
		n, ok := paramIndex(p.name)
		if !ok {
			indexed = nil
			break
		}
		indexed[n] = p.value
	}

	if indexed == nil {
		out := make(Params, len(pairs))
		for i, p := range pairs {
			out[i] = p.value
		}
		return out, nil
	}

	keys := make([]int, 0, len(indexed))
	for k := range indexed {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	size := 0
	if len(keys) > 0 {
		size = keys[len(keys)-1] + 1
	}
	if size > maxParams {
		return nil, fmt.Errorf("%w: parameter index %d out of range", ErrInvalidParams, size-1)
	}
	out := make(Params, size)
	for i := range out {
		out[i] = indexed[i]
	}
	return out, nil
}

func paramIndex(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, "Param")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// stringArgs converts string parameters back to a string slice.
func stringArgs(p Params) []string {
	out := make([]string, len(p))
	for i, v := range p {
		s, _ := v.(string)
		out[i] = s
	}
	return out
}
