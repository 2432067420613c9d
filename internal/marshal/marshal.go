// Package marshal turns typed kernel parameters into the flat positional
// argument list a kernel is called with.
//
// Every kernel receives exactly three kinds of arguments: borrowed float64
// arrays, fixed-width ints and doubles. Arrays are passed as views on the
// caller's buffer; the kernel writes its output into one of them in place.
package marshal

import (
	"fmt"
	"math"
	"strings"
)

type Kind string

const (
	KindArray  Kind = "array"
	KindInt    Kind = "int"
	KindDouble Kind = "double"
)

var validKinds = []Kind{KindArray, KindInt, KindDouble}

var acceptedTypes = map[Kind][]string{
	KindArray:  {"[]float64", "[][]float64"},
	KindInt:    {"int", "int32", "int64", "[]int", "[]int32", "[]int64"},
	KindDouble: {"float64", "float32", "[]float64", "[]float32"},
}

// ValidKinds lists the supported argument kinds.
func ValidKinds() []Kind {
	out := make([]Kind, len(validKinds))
	copy(out, validKinds)
	return out
}

func isValid(k string) bool {
	for _, v := range validKinds {
		if string(v) == k {
			return true
		}
	}
	return false
}

// Arg is one positional kernel argument: ArrayArg, IntArg or FloatArg.
type Arg interface {
	Kind() Kind
}

// ArrayArg is a read-only view on a caller-owned buffer. It never copies.
type ArrayArg struct {
	Data []float64
}

func (ArrayArg) Kind() Kind { return KindArray }

// Ptr returns the address of the first element, nil for an empty array.
func (a ArrayArg) Ptr() *float64 {
	if len(a.Data) == 0 {
		return nil
	}
	return &a.Data[0]
}

type IntArg int32

func (IntArg) Kind() Kind { return KindInt }

type FloatArg float64

func (FloatArg) Kind() Kind { return KindDouble }

// Entry binds a kind name to one value or a slice of same-kind values.
type Entry struct {
	Kind  string
	Value any
}

// Params is an ordered set of entries. Order is the positional order.
type Params []Entry

// Merge appends extra to p. A kind already present in p gets the extra values
// appended to its own (fanned out positionally); new kinds are added at the end.
// Neither input is modified.
func (p Params) Merge(extra Params) Params {
	out := make(Params, len(p), len(p)+len(extra))
	copy(out, p)
	for _, e := range extra {
		idx := -1
		for i := range out {
			if out[i].Kind == e.Kind {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, e)
			continue
		}
		var values []any
		values = append(values, spread(Kind(out[idx].Kind), out[idx].Value)...)
		values = append(values, spread(Kind(e.Kind), e.Value)...)
		out[idx] = Entry{Kind: out[idx].Kind, Value: values}
	}
	return out
}

// spread expands a scalar-or-slice value into its elements. A []float64 is a
// single element for KindArray and a list of doubles for KindDouble.
func spread(k Kind, v any) []any {
	switch k {
	case KindArray:
		switch t := v.(type) {
		case [][]float64:
			out := make([]any, len(t))
			for i := range t {
				out[i] = t[i]
			}
			return out
		case []any:
			return t
		}
	case KindInt:
		switch t := v.(type) {
		case []int:
			return toAny(t)
		case []int32:
			return toAny(t)
		case []int64:
			return toAny(t)
		case []any:
			return t
		}
	case KindDouble:
		switch t := v.(type) {
		case []float64:
			return toAny(t)
		case []float32:
			return toAny(t)
		case []any:
			return t
		}
	}
	return []any{v}
}

func toAny[T any](s []T) []any {
	out := make([]any, len(s))
	for i := range s {
		out[i] = s[i]
	}
	return out
}

// Marshal converts params into the flat argument list, entry by entry in
// caller order, one slot per element.
func Marshal(params Params) ([]Arg, error) {
	var args []Arg
	for _, e := range params {
		if !isValid(e.Kind) {
			return nil, &UnsupportedKindError{Kind: e.Kind, Valid: ValidKinds()}
		}
		k := Kind(e.Kind)
		for _, v := range spread(k, e.Value) {
			arg, ok := convert(k, v)
			if !ok {
				return nil, &TypeMismatchError{Kind: k, Value: e.Value, Accepted: acceptedTypes[k]}
			}
			args = append(args, arg)
		}
	}
	return args, nil
}

func convert(k Kind, v any) (Arg, bool) {
	switch k {
	case KindArray:
		if t, ok := v.([]float64); ok {
			return ArrayArg{Data: t}, true
		}
	case KindInt:
		var n int64
		switch t := v.(type) {
		case int:
			n = int64(t)
		case int32:
			n = int64(t)
		case int64:
			n = t
		default:
			return nil, false
		}
		if n > math.MaxInt32 || n < math.MinInt32 {
			return nil, false
		}
		return IntArg(n), true
	case KindDouble:
		switch t := v.(type) {
		case float64:
			return FloatArg(t), true
		case float32:
			return FloatArg(t), true
		}
	}
	return nil, false
}

// Signature is the documented positional kind list of a kernel.
type Signature []Kind

func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = string(k)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Check verifies args match s position by position.
func (s Signature) Check(args []Arg) error {
	if len(args) != len(s) {
		return &SignatureError{Want: s, Got: kindsOf(args), Position: -1}
	}
	for i, a := range args {
		if a.Kind() != s[i] {
			return &SignatureError{Want: s, Got: kindsOf(args), Position: i}
		}
	}
	return nil
}

func kindsOf(args []Arg) Signature {
	out := make(Signature, len(args))
	for i, a := range args {
		out[i] = a.Kind()
	}
	return out
}

func describe(v any) string {
	switch t := v.(type) {
	case []float64:
		if len(t) > 8 {
			return fmt.Sprintf("[%d float64 values]", len(t))
		}
	case [][]float64:
		return fmt.Sprintf("[%d arrays]", len(t))
	}
	return fmt.Sprintf("%v", v)
}
