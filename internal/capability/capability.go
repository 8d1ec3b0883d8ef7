package capability

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/typeloader/typeloader/internal/library"
	"github.com/typeloader/typeloader/internal/types"
	"github.com/typeloader/typeloader/pkg/sdk"
)

// Capability is the interface discovered types must satisfy.
type Capability struct {
	Name string
	Type reflect.Type
}

// Of returns the capability for interface type C.
func Of[C any]() (Capability, error) {
	return FromType(reflect.TypeOf((*C)(nil)).Elem())
}

// FromType returns the capability for t, which must be an interface type.
func FromType(t reflect.Type) (Capability, error) {
	if t == nil {
		return Capability{}, errors.New("capability: nil type")
	}
	if t.Kind() != reflect.Interface {
		return Capability{}, fmt.Errorf("capability: %s is not an interface type", t)
	}
	return Capability{Name: t.String(), Type: t}, nil
}

// Match is a concrete type found in a loaded library.
type Match struct {
	Library types.Identity
	Path    string
	Name    string
	Type    reflect.Type
	// Pointer is set when only *Type satisfies the capability.
	Pointer bool
	newFn   func() any
}

// String returns library:name.
func (m Match) String() string {
	return m.Library.String() + ":" + m.Name
}

// New returns a value satisfying the capability: the library factory
// result when it has one, otherwise a zero value (a pointer to one when
// Pointer is set).
func (m Match) New() (any, error) {
	if m.newFn != nil {
		v := m.newFn()
		if v != nil {
			rv := reflect.ValueOf(v)
			if rv.Type() == m.Type {
				if m.Pointer {
					p := reflect.New(m.Type)
					p.Elem().Set(rv)
					return p.Interface(), nil
				}
				return v, nil
			}
			if rv.Type() == reflect.PointerTo(m.Type) {
				if m.Pointer {
					return v, nil
				}
				return rv.Elem().Interface(), nil
			}
		}
	}
	if m.Type == nil {
		return nil, fmt.Errorf("capability: %s has no type", m)
	}
	v := sdk.Alloc(m.Type)
	if m.Pointer {
		p := reflect.New(m.Type)
		p.Elem().Set(v)
		return p.Interface(), nil
	}
	return v.Interface(), nil
}

// Filter returns the exports of lib satisfying c. Interface types and
// exports without a type are skipped.
func Filter(lib *library.Library, c Capability) []Match {
	if lib == nil || c.Type == nil {
		return nil
	}
	var out []Match
	for _, e := range lib.Exports {
		if e.Type == nil || e.Type.Kind() == reflect.Interface {
			continue
		}
		m := Match{Library: lib.Identity, Path: lib.Path, Name: e.Name, Type: e.Type, newFn: e.New}
		switch {
		case e.Type.Implements(c.Type):
		case reflect.PointerTo(e.Type).Implements(c.Type):
			m.Pointer = true
		default:
			continue
		}
		out = append(out, m)
	}
	return out
}

// Instantiate creates an instance of m typed as C.
func Instantiate[C any](m Match) (C, error) {
	var zero C
	v, err := m.New()
	if err != nil {
		return zero, err
	}
	c, ok := v.(C)
	if !ok {
		return zero, fmt.Errorf("capability: %s (%T) does not implement %s", m, v, reflect.TypeOf((*C)(nil)).Elem())
	}
	return c, nil
}
