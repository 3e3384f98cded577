package commands

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	lookup  map[string]Command // names and aliases
	primary map[string]Command // names only
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		lookup:  make(map[string]Command),
		primary: make(map[string]Command),
	}
}

// Register adds c under its name and aliases. No name may be taken twice.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for _, n := range names {
		if owner, taken := r.lookup[n]; taken {
			return fmt.Errorf("command name %q already used by %s", n, owner.Name())
		}
	}
	for _, n := range names {
		r.lookup[n] = c
	}
	r.primary[c.Name()] = c
	return nil
}

// Find returns the command registered as name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.lookup[name]
	return cmd, ok
}

// All returns each command once, ordered by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.primary))
	for _, name := range slices.Sorted(maps.Keys(r.primary)) {
		out = append(out, r.primary[name])
	}
	return out
}

// DefaultRegistry holds the commands that register themselves in init.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
