// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package statement

import (
	"math"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Resolver renders a single clause of a statement.
type Resolver interface {
	// Params returns the number of arguments Resolve expects.
	Params() int
	// Resolve returns the SQL for the clause.
	Resolve(args []any) (string, error)
}

var (
	stringType = reflect.TypeOf("")
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// funcResolver is a Resolver calling a Go function.
type funcResolver struct {
	fn reflect.Value
	// withErr is set if the function returns an error as well as the SQL.
	withErr bool
}

// Func returns a Resolver calling fn. fn must be a function returning either
// a string, or a string and an error. Its parameters are the clause
// arguments, variadic functions are not supported.
func Func(fn any) (Resolver, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, errors.Errorf("need function, got %T", fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, errors.Errorf("variadic function %s not supported", t)
	}
	switch {
	case t.NumOut() == 1 && t.Out(0) == stringType:
		return &funcResolver{fn: v}, nil
	case t.NumOut() == 2 && t.Out(0) == stringType && t.Out(1) == errorType:
		return &funcResolver{fn: v, withErr: true}, nil
	}
	return nil, errors.Errorf("function %s must return string or (string, error)", t)
}

// MustFunc is the same as [Func] except that it panics on error.
func MustFunc(fn any) Resolver {
	r, err := Func(fn)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *funcResolver) Params() int {
	return r.fn.Type().NumIn()
}

func (r *funcResolver) Resolve(args []any) (string, error) {
	t := r.fn.Type()
	if len(args) != t.NumIn() {
		return "", errors.Errorf("expected %d arguments, got %d", t.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := t.In(i)
		if arg == nil {
			switch pt.Kind() {
			case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
				in[i] = reflect.Zero(pt)
				continue
			}
			return "", errors.Errorf("argument %d: cannot use nil as %s", i, pt)
		}
		av := reflect.ValueOf(arg)
		switch {
		case av.Type().AssignableTo(pt):
		case av.Type().ConvertibleTo(pt) && sameFamily(av.Kind(), pt.Kind()):
			if overflows(av, pt) {
				return "", errors.Errorf("argument %d: %v overflows %s", i, arg, pt)
			}
			av = av.Convert(pt)
		default:
			return "", errors.Errorf("argument %d: cannot use %s as %s", i, av.Type(), pt)
		}
		in[i] = av
	}
	out := r.fn.Call(in)
	if r.withErr && !out[1].IsNil() {
		return "", out[1].Interface().(error)
	}
	return out[0].String(), nil
}

// sameFamily reports whether a value of kind a may be converted to kind b.
// Integers convert between sizes, everything else only to the same kind.
func sameFamily(a, b reflect.Kind) bool {
	return a == b || (isInteger(a) && isInteger(b))
}

// overflows reports whether the integer v cannot be represented in the
// integer type t.
func overflows(v reflect.Value, t reflect.Type) bool {
	if !isInteger(v.Kind()) || !isInteger(t.Kind()) {
		return false
	}
	zero := reflect.Zero(t)
	switch {
	case isSigned(v.Kind()) && isSigned(t.Kind()):
		return zero.OverflowInt(v.Int())
	case isSigned(v.Kind()):
		return v.Int() < 0 || zero.OverflowUint(uint64(v.Int()))
	case isSigned(t.Kind()):
		return v.Uint() > math.MaxInt64 || zero.OverflowInt(int64(v.Uint()))
	}
	return zero.OverflowUint(v.Uint())
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// keywordResolver prefixes the output of another Resolver with a keyword.
type keywordResolver struct {
	keyword string
	r       Resolver
}

// Keyword returns a Resolver that writes keyword followed by the output of r,
// e.g. "WHERE" and a condition. Nothing is written if r returns no SQL.
func Keyword(keyword string, r Resolver) Resolver {
	return &keywordResolver{keyword: keyword, r: r}
}

func (r *keywordResolver) Params() int {
	return r.r.Params()
}

func (r *keywordResolver) Resolve(args []any) (string, error) {
	sql, err := r.r.Resolve(args)
	if err != nil || sql == "" {
		return "", err
	}
	return r.keyword + " " + sql, nil
}

// joinParts joins the non-empty parts with sep.
func joinParts(parts []string, sep string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, sep)
}
