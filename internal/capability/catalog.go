package capability

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/typeloader/typeloader/pkg/sdk"
)

// DefaultName is the catalog name of sdk.Plugin.
const DefaultName = "plugin"

var (
	catalogMu sync.RWMutex
	catalog   = map[string]Capability{}
)

func init() {
	c, _ := Of[sdk.Plugin]()
	catalog[DefaultName] = c
}

// Register adds a named capability so command line users can select it.
func Register(name string, t reflect.Type) error {
	c, err := FromType(t)
	if err != nil {
		return err
	}
	catalogMu.Lock()
	defer catalogMu.Unlock()
	if _, ok := catalog[name]; ok {
		return fmt.Errorf("capability: %q already registered", name)
	}
	catalog[name] = c
	return nil
}

// Lookup returns the capability registered under name.
func Lookup(name string) (Capability, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	c, ok := catalog[name]
	return c, ok
}

// Names returns the registered capability names, sorted.
func Names() []string {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	out := make([]string, 0, len(catalog))
	for n := range catalog {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
