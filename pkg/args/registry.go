package args

import (
	"context"
	"reflect"
	"sync"
)

var converterType = reflect.TypeFor[Converter]()

// DefaultRegistry is the registry used by NewBinder when none is given.
var DefaultRegistry = NewRegistry()

// Registry maps declared types to converters. Custom registrations shadow the
// built-in and entity ones for the same type. Registration normally happens at
// startup; lookups are safe from any goroutine.
type Registry struct {
	mu      sync.RWMutex
	builtin map[reflect.Type]Converter
	custom  map[reflect.Type]Converter
}

// NewRegistry returns a registry preloaded with the primitive converters.
func NewRegistry() *Registry {
	r := &Registry{
		builtin: make(map[reflect.Type]Converter),
		custom:  make(map[reflect.Type]Converter),
	}
	r.builtin[TypeOf[string]()] = String
	r.builtin[TypeOf[bool]()] = Bool
	for _, t := range []reflect.Type{
		TypeOf[int](), TypeOf[int8](), TypeOf[int16](), TypeOf[int32](), TypeOf[int64](),
		TypeOf[uint](), TypeOf[uint8](), TypeOf[uint16](), TypeOf[uint32](), TypeOf[uint64](),
	} {
		r.builtin[t] = intConverter{out: t}
	}
	for _, t := range []reflect.Type{TypeOf[float32](), TypeOf[float64]()} {
		r.builtin[t] = floatConverter{out: t}
	}
	return r
}

// Register installs a custom converter for t.
func (r *Registry) Register(t reflect.Type, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[t] = c
}

// RegisterFunc installs a custom converter function for t.
func (r *Registry) RegisterFunc(t reflect.Type, fn func(ctx context.Context, cc *Context, raw string) (any, error)) {
	r.Register(t, ConverterFunc(fn))
}

// RegisterEntity makes t resolvable through the host's entity resolver.
func (r *Registry) RegisterEntity(t reflect.Type, kind EntityKind, resolver EntityResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtin[t] = &EntityConverter{Kind: kind, Resolver: resolver}
}

// Unregister drops the custom converter for t, uncovering any built-in one.
func (r *Registry) Unregister(t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.custom, t)
}

// Resolve returns the converter for t. Lookup order: custom, built-in or
// entity, a type that implements Converter itself, a named primitive type or
// a pointer to one, and finally the raw string passthrough.
func (r *Registry) Resolve(t reflect.Type) Converter {
	if t == nil {
		return String
	}

	r.mu.RLock()
	c, ok := r.custom[t]
	if !ok {
		c, ok = r.builtin[t]
	}
	r.mu.RUnlock()
	if ok {
		return c
	}

	if c := selfConverter(t); c != nil {
		return c
	}
	if primitiveKind(t.Kind()) {
		return kindConverter{out: t}
	}
	if t.Kind() == reflect.Pointer && primitiveKind(t.Elem().Kind()) {
		return pointerConverter{elem: r.Resolve(t.Elem()), out: t.Elem()}
	}
	return String
}

// selfConverter builds a converter from a type that declares the capability
// on itself, either on the value or on its pointer.
func selfConverter(t reflect.Type) Converter {
	switch {
	case t.Kind() == reflect.Pointer && t.Implements(converterType):
		return reflect.New(t.Elem()).Interface().(Converter)
	case t.Kind() != reflect.Interface && t.Implements(converterType):
		return reflect.Zero(t).Interface().(Converter)
	case t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(converterType):
		return reflect.New(t).Interface().(Converter)
	}
	return nil
}
