package crate

import (
	"fmt"
	"reflect"
	"strings"
)

// Type identifies a service or implementation type.
//
// A Type is either closed, backed by a reflect.Type, or an open generic
// template such as Repository[_], which only carries the template identity.
// Type values are comparable and safe to use as map keys.
type Type struct {
	rtype    reflect.Type
	template string // set only for open templates
}

// TypeOf returns the closed Type of T. Interface types are preserved.
func TypeOf[T any]() Type {
	return TypeFor(reflect.TypeFor[T]())
}

// TypeFor wraps a reflect.Type.
func TypeFor(t reflect.Type) Type {
	return Type{rtype: t}
}

// OpenOf returns the open template of the generic instantiation T.
// The type arguments of T are discarded, so OpenOf[Repository[any]]()
// denotes every Repository instantiation. Pointer shape is kept:
// OpenOf[*Repo[any]]() and OpenOf[Repo[any]]() are different templates.
//
// OpenOf panics if T is not a generic instantiation.
func OpenOf[T any]() Type {
	t := reflect.TypeFor[T]()
	template, _, ok := splitGeneric(t)
	if !ok {
		panic(fmt.Sprintf("crate: %s is not a generic type", t))
	}
	return Type{template: template}
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool {
	return t.rtype == nil && t.template == ""
}

// IsOpen reports whether t is an open generic template.
func (t Type) IsOpen() bool {
	return t.rtype == nil && t.template != ""
}

// IsGeneric reports whether t is a closed generic instantiation.
func (t Type) IsGeneric() bool {
	if t.rtype == nil {
		return false
	}
	_, _, ok := splitGeneric(t.rtype)
	return ok
}

// Template returns the open template of a closed generic instantiation.
// An open Type returns itself; any other Type returns the zero Type.
func (t Type) Template() Type {
	if t.IsOpen() {
		return t
	}
	if t.rtype == nil {
		return Type{}
	}
	template, _, ok := splitGeneric(t.rtype)
	if !ok {
		return Type{}
	}
	return Type{template: template}
}

// typeArgs returns the bracketed argument list of a closed instantiation.
func (t Type) typeArgs() string {
	if t.rtype == nil {
		return ""
	}
	_, args, _ := splitGeneric(t.rtype)
	return args
}

// Reflect returns the underlying reflect.Type, or nil for open templates.
func (t Type) Reflect() reflect.Type {
	return t.rtype
}

// String returns a human-readable representation of the type
func (t Type) String() string {
	switch {
	case t.rtype != nil:
		return t.rtype.String()
	case t.template != "":
		return t.template + "[_]"
	default:
		return "<nil>"
	}
}

// instantiate names the closed type produced by applying args to an open
// template. The result is the catalog key of that instantiation.
func (t Type) instantiate(args string) string {
	return t.template + "[" + args + "]"
}

// splitGeneric splits a generic instantiation into its template identity
// (pointer prefix, package path and generic name) and its argument list.
func splitGeneric(t reflect.Type) (template, args string, ok bool) {
	prefix := ""
	for t.Kind() == reflect.Ptr && t.Name() == "" {
		prefix += "*"
		t = t.Elem()
	}

	name := t.Name()
	i := strings.IndexByte(name, '[')
	if i <= 0 || !strings.HasSuffix(name, "]") {
		return "", "", false
	}

	return prefix + t.PkgPath() + "." + name[:i], name[i+1 : len(name)-1], true
}

// catalogKey is the instantiation key of a closed generic type, or "".
func catalogKey(t reflect.Type) string {
	template, args, ok := splitGeneric(t)
	if !ok {
		return ""
	}
	return template + "[" + args + "]"
}
