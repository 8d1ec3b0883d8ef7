package sdk

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	semver "github.com/blang/semver/v4"
)

// Plugin is the default capability discovered types are checked against.
type Plugin interface {
	PluginName() string
}

// TypesSymbol is the symbol a native Go plugin exports to list its type
// symbols. It must be a package-level []string variable.
const TypesSymbol = "Types"

// Symbol is a host-registered type that type libraries may refer to by name.
type Symbol struct {
	Name string
	Type reflect.Type
	// New returns a fresh instance; nil for interface types.
	New func() any
}

// Table maps symbol names to Go types and records the dependency modules the
// host provides. It is safe for concurrent use.
type Table struct {
	mu       sync.RWMutex
	symbols  map[string]Symbol
	provides map[string][]string
}

// Default is the process-wide table used by manifest libraries unless another
// table is configured.
var Default = NewTable()

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		symbols:  map[string]Symbol{},
		provides: map[string][]string{},
	}
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// Register adds a symbol from a sample value or from a constructor of the
// form func() T.
func (t *Table) Register(name string, sample any) error {
	if sample == nil {
		return fmt.Errorf("sdk: symbol %q: nil sample", name)
	}
	v := reflect.ValueOf(sample)
	typ := v.Type()
	if typ.Kind() == reflect.Func {
		if typ.NumIn() != 0 || typ.NumOut() != 1 {
			return fmt.Errorf("sdk: symbol %q: constructor must be func() T, got %s", name, typ)
		}
		if v.IsNil() {
			return fmt.Errorf("sdk: symbol %q: nil constructor", name)
		}
		return t.add(Symbol{
			Name: name,
			Type: typ.Out(0),
			New:  func() any { return v.Call(nil)[0].Interface() },
		})
	}
	return t.RegisterType(name, typ)
}

// RegisterType adds a symbol for typ. Interface types are allowed and are
// later excluded from matches. New returns a *T for a value type T and a
// freshly allocated value for a pointer type.
func (t *Table) RegisterType(name string, typ reflect.Type) error {
	if typ == nil {
		return fmt.Errorf("sdk: symbol %q: nil type", name)
	}
	s := Symbol{Name: name, Type: typ}
	switch typ.Kind() {
	case reflect.Interface:
	case reflect.Pointer:
		s.New = func() any { return Alloc(typ).Interface() }
	default:
		s.New = func() any { return reflect.New(typ).Interface() }
	}
	return t.add(s)
}

// Alloc returns a zero value of typ in which every pointer level is
// allocated, so Alloc(*T) yields a non-nil *T.
func Alloc(typ reflect.Type) reflect.Value {
	if typ.Kind() != reflect.Pointer {
		return reflect.New(typ).Elem()
	}
	p := reflect.New(typ.Elem())
	p.Elem().Set(Alloc(typ.Elem()))
	return p
}

func (t *Table) add(s Symbol) error {
	if s.Name == "" {
		return errors.New("sdk: empty symbol name")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.symbols[s.Name]; ok {
		return fmt.Errorf("sdk: symbol %q already registered", s.Name)
	}
	t.symbols[s.Name] = s
	return nil
}

// Lookup returns the symbol registered under name.
func (t *Table) Lookup(name string) (Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.symbols[name]
	return s, ok
}

// Names returns all registered symbol names, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.symbols))
	for n := range t.symbols {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Provide records that the host offers module at version.
func (t *Table) Provide(module, version string) error {
	if module == "" {
		return errors.New("sdk: empty module name")
	}
	if _, err := semver.ParseTolerant(version); err != nil {
		return fmt.Errorf("sdk: module %q: invalid version %q: %w", module, version, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, v := range t.provides[module] {
		if v == version {
			return nil
		}
	}
	t.provides[module] = append(t.provides[module], version)
	return nil
}

// Providers returns the versions provided for module in registration order.
func (t *Table) Providers(module string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.provides[module]...)
}

// Register adds a symbol to the Default table.
func Register(name string, sample any) error { return Default.Register(name, sample) }

// Provide records a host module on the Default table.
func Provide(module, version string) error { return Default.Provide(module, version) }
