package crate

import (
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// In is a marker type that should be embedded in structs to indicate
// they are parameter objects. Exported fields of the struct are resolved
// by type and injected.
//
// Example:
//
//	type ServiceParams struct {
//	    crate.In
//
//	    Repo   Repository[User]
//	    Clock  Clock             `optional:"true"`
//	}
//
//	func NewService(p ServiceParams) *Service {
//	    return &Service{repo: p.Repo, clock: p.Clock}
//	}
type In struct{}

var (
	inType    = reflect.TypeOf(In{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// constructorInfo holds analyzed constructor metadata
type constructorInfo struct {
	fn       reflect.Value
	result   reflect.Type
	params   []paramInfo
	hasError bool
	implicit bool // zero-value constructor synthesized for types with none declared
}

// paramInfo describes a constructor parameter
type paramInfo struct {
	typ      reflect.Type
	optional bool        // From `optional:"true"` tag
	index    int         // Position in function parameters or struct field index
	isIn     bool        // Whether this is an In struct (expanded into multiple deps)
	inFields []paramInfo // Expanded fields if isIn is true
}

// analyzeConstructor inspects a constructor function and extracts its
// dependencies and the implementation type it builds.
func analyzeConstructor(constructor any) (*constructorInfo, error) {
	if constructor == nil {
		return nil, errors.New("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(constructor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, errors.New("constructor must be a function")
	}
	if fnValue.IsNil() {
		return nil, errors.New("constructor cannot be nil")
	}
	if fnType.IsVariadic() {
		return nil, errors.New("constructor must not be variadic")
	}

	info := &constructorInfo{fn: fnValue}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, errors.Errorf("second result must be error, was %s", fnType.Out(1))
		}
		info.hasError = true
	default:
		return nil, errors.Errorf("constructor must return T or (T, error), returns %d values", fnType.NumOut())
	}

	info.result = fnType.Out(0)
	if info.result == errorType {
		return nil, errors.New("constructor must return a non-error value")
	}

	for i := 0; i < fnType.NumIn(); i++ {
		param, err := analyzeParam(fnType.In(i), i)
		if err != nil {
			return nil, wrapf(err, "parameter %d", i)
		}
		info.params = append(info.params, param)
	}

	return info, nil
}

// analyzeParam analyzes a single parameter type
func analyzeParam(t reflect.Type, index int) (paramInfo, error) {
	param := paramInfo{
		typ:   t,
		index: index,
	}

	if isInStruct(t) {
		param.isIn = true
		fields, err := expandInStruct(t)
		if err != nil {
			return param, err
		}
		param.inFields = fields
	}

	return param, nil
}

// isInStruct checks if a type embeds crate.In
func isInStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == inType {
			return true
		}
		if field.Anonymous && isInStruct(field.Type) {
			return true
		}
	}
	return false
}

// expandInStruct expands an In struct into its field dependencies
func expandInStruct(t reflect.Type) ([]paramInfo, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var params []paramInfo

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip the embedded In marker
		if field.Anonymous && (field.Type == inType || isInStruct(field.Type)) {
			continue
		}

		if !field.IsExported() {
			continue
		}

		if isInStruct(field.Type) {
			return nil, errors.Errorf("field %s: nested parameter objects are not supported", field.Name)
		}

		param := paramInfo{
			typ:   field.Type,
			index: i,
		}

		if tag := field.Tag.Get("optional"); strings.ToLower(tag) == "true" {
			param.optional = true
		}

		params = append(params, param)
	}

	return params, nil
}

// dependencies returns every type the constructor resolves, In fields expanded.
func (c *constructorInfo) dependencies() []paramInfo {
	var flat []paramInfo
	for _, p := range c.params {
		if p.isIn {
			flat = append(flat, p.inFields...)
		} else {
			flat = append(flat, p)
		}
	}
	return flat
}

// call invokes the constructor with already resolved arguments.
func (c *constructorInfo) call(args []reflect.Value) (any, error) {
	if c.implicit {
		return zeroValue(c.result).Interface(), nil
	}

	results := c.fn.Call(args)

	if c.hasError {
		if errResult := results[1]; !errResult.IsNil() {
			return nil, errResult.Interface().(error)
		}
	}

	return results[0].Interface(), nil
}

// implicitConstructor returns the parameterless constructor every concrete
// type has when none is declared, or nil when t cannot be instantiated.
func implicitConstructor(t reflect.Type) *constructorInfo {
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return nil
	}
	return &constructorInfo{result: t, implicit: true}
}

// zeroValue builds the value an implicit constructor returns. Pointers point
// to a fresh zero value and maps are allocated, so the result is usable.
func zeroValue(t reflect.Type) reflect.Value {
	switch t.Kind() {
	case reflect.Ptr:
		return reflect.New(t.Elem())
	case reflect.Map:
		return reflect.MakeMap(t)
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0)
	default:
		return reflect.New(t).Elem()
	}
}

// typeCatalog records declared constructors and every closed generic
// instantiation the container has seen, so open templates can be specialized.
type typeCatalog struct {
	constructors map[reflect.Type][]*constructorInfo
	known        map[string]reflect.Type
	mu           sync.RWMutex
}

// newTypeCatalog creates an empty catalog
func newTypeCatalog() *typeCatalog {
	return &typeCatalog{
		constructors: make(map[reflect.Type][]*constructorInfo),
		known:        make(map[string]reflect.Type),
	}
}

// declare adds a constructor overload for its result type
func (c *typeCatalog) declare(info *constructorInfo) {
	c.mu.Lock()
	c.constructors[info.result] = append(c.constructors[info.result], info)
	c.mu.Unlock()

	c.learn(info.result)
	for _, p := range info.dependencies() {
		c.learn(p.typ)
	}
}

// learn records t, its pointer and its element type when they are generic
// instantiations.
func (c *typeCatalog) learn(t reflect.Type) {
	if t == nil {
		return
	}

	variants := []reflect.Type{t}
	if t.Kind() == reflect.Ptr {
		variants = append(variants, t.Elem())
	} else {
		variants = append(variants, reflect.PointerTo(t))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range variants {
		if key := catalogKey(v); key != "" {
			c.known[key] = v
		}
	}
}

// instantiation looks up a closed type by its instantiation key
func (c *typeCatalog) instantiation(key string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.known[key]
	return t, ok
}

// constructorFor selects the constructor with the most parameters. Ties go
// to the first declared. Types without declared constructors fall back to
// their implicit constructor; nil means the type cannot be constructed.
func (c *typeCatalog) constructorFor(t reflect.Type) *constructorInfo {
	c.mu.RLock()
	declared := c.constructors[t]
	c.mu.RUnlock()

	var best *constructorInfo
	for _, info := range declared {
		if best == nil || len(info.params) > len(best.params) {
			best = info
		}
	}
	if best != nil {
		return best
	}

	return implicitConstructor(t)
}
