package rtti

import (
	"errors"
	"reflect"
	"testing"
)

func TestTypeOf(t *testing.T) {
	type myInt int
	tests := []struct {
		value any
		want  string
	}{
		{1, TypeInt},
		{int64(1), TypeInt},
		{uint8(1), TypeInt},
		{myInt(3), TypeInt},
		{1.5, TypeFloat},
		{float32(1), TypeFloat},
		{"s", TypeString},
		{true, TypeBool},
		{&Instance{}, TypeObject},
		{nil, TypeVar},
		{[]int{1}, TypeVar},
	}

	for _, tt := range tests {
		if got := TypeOf(tt.value); got != tt.want {
			t.Errorf("TypeOf(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestParamsSignature(t *testing.T) {
	if got := (Params{}).Signature(TypeObject); got != DefaultConstructorSignature {
		t.Errorf("empty Signature() = %q, want %q", got, DefaultConstructorSignature)
	}
	if got := (Params{1, "a", 2.5, false}).Signature("void"); got != "void(int,string,float,bool)" {
		t.Errorf("Signature() = %q", got)
	}
}

func TestParseSignature(t *testing.T) {
	tests := []struct {
		in      string
		want    Signature
		wantErr bool
	}{
		{"Object*()", Signature{Return: TypeObject}, false},
		{" int ( int , float ) ", Signature{Return: TypeInt, Params: []string{TypeInt, TypeFloat}}, false},
		{"(string)", Signature{Return: TypeVoid, Params: []string{TypeString}}, false},
		{"void(int,)", Signature{}, true},
		{"void", Signature{}, true},
		{"void(int", Signature{}, true},
	}

	for _, tt := range tests {
		got, err := ParseSignature(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSignature(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrInvalidSignature) {
				t.Errorf("ParseSignature(%q) error = %v, want ErrInvalidSignature", tt.in, err)
			}
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseSignature(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestSignatureAccepts(t *testing.T) {
	sig, err := ParseSignature("void(int,float,var,Object*)")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		params Params
		want   bool
	}{
		{"exact", Params{1, 1.5, "x", &Instance{}}, true},
		{"int for float", Params{1, 2, true, nil}, true},
		{"float for int", Params{1.5, 1.5, 1, nil}, false},
		{"too few", Params{1, 1.5}, false},
		{"string for object", Params{1, 1.5, 1, "obj"}, false},
	}

	for _, tt := range tests {
		if got := sig.Accepts(tt.params); got != tt.want {
			t.Errorf("%s: Accepts(%v) = %v, want %v", tt.name, tt.params, got, tt.want)
		}
	}

	coerced := sig.Coerce(Params{1, 2, true, nil})
	if _, ok := coerced[1].(float64); !ok {
		t.Errorf("Coerce() left %T for a float parameter", coerced[1])
	}
}

func TestSignatureFromStrings(t *testing.T) {
	sig, _ := ParseSignature("Object*(int,float,bool,string)")

	got, err := sig.FromStrings([]string{"42", "1.5", "true"})
	if err != nil {
		t.Fatalf("FromStrings() error = %v", err)
	}
	want := Params{42, 1.5, true, ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromStrings() = %#v, want %#v", got, want)
	}

	if _, err := sig.FromStrings([]string{"x"}); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("FromStrings(bad int) error = %v, want ErrSignatureMismatch", err)
	}
	if _, err := sig.FromStrings([]string{"1", "2", "3", "4", "5"}); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("FromStrings(too many) error = %v, want ErrSignatureMismatch", err)
	}
}

func TestParseParamString(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Params
		wantErr bool
	}{
		{"empty", "", Params{}, false},
		{"indexed", `Param0="Hello" Param1="42"`, Params{"Hello", "42"}, false},
		{"indexed out of order", `Param1="b" Param0="a"`, Params{"a", "b"}, false},
		{"gap", `Param0="a" Param2="c"`, Params{"a", "", "c"}, false},
		{"named keeps order", `Name="x" Size="3"`, Params{"x", "3"}, false},
		{"unquoted", `Param0=7 Param1=abc`, Params{"7", "abc"}, false},
		{"escaped quote", `Param0="say \"hi\""`, Params{`say "hi"`}, false},
		{"spaces in value", `Param0="a b"`, Params{"a b"}, false},
		{"missing equals", `Param0`, nil, true},
		{"unterminated", `Param0="abc`, nil, true},
		{"index too large", `Param1000="x"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParamString(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseParamString(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParams) {
					t.Errorf("error = %v, want ErrInvalidParams", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseParamString(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
