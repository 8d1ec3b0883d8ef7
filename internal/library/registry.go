package library

import (
	"sort"
	"sync"

	"github.com/typeloader/typeloader/internal/types"
)

// Registry records every library identity loaded into the process. Entries
// are never removed. Loads are serialized per identity only.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*slot
}

type slot struct {
	once     sync.Once
	identity types.Identity
	lib      *Library
	failure  *types.LoadFailure
}

// Default is the process-wide registry.
var Default = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*slot{}}
}

// LoadOnce runs load the first time id is seen and returns the stored result
// on every later call. reused is false only for the call that ran load.
// Concurrent callers for the same identity wait for the first one; callers
// for other identities are not blocked.
func (r *Registry) LoadOnce(id types.Identity, load func() (*Library, *types.LoadFailure)) (lib *Library, failure *types.LoadFailure, reused bool) {
	key := id.String()
	r.mu.Lock()
	s, ok := r.entries[key]
	if !ok {
		s = &slot{identity: id}
		r.entries[key] = s
	}
	r.mu.Unlock()

	ran := false
	s.once.Do(func() {
		ran = true
		s.lib, s.failure = load()
	})
	return s.lib, s.failure, !ran
}

// Loaded reports whether id has been loaded.
func (r *Registry) Loaded(id types.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id.String()]
	return ok
}

// Identities returns every registered identity sorted by name@version.
func (r *Registry) Identities() []types.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Identity, 0, len(r.entries))
	for _, s := range r.entries {
		out = append(out, s.identity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
