package cmd

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultRegistry is the global registry used by adapters (Discord, CLI, etc.).
var DefaultRegistry = NewRegistry()

// DuplicateError is returned when a name or alias is already taken.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate command: multiple commands share the name/alias %q", e.Name)
}

// Registry stores commands by name and alias. It does not perform dispatch;
// each adapter looks up commands and invokes them with its own context.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	primary  map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		primary:  make(map[string]Command),
	}
}

// Register adds a command under its name and aliases. Nothing is added if any
// of them is taken.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, AliasesOf(c)...)
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if _, taken := r.commands[n]; taken || seen[n] {
			return &DuplicateError{Name: n}
		}
		seen[n] = true
	}

	for _, n := range names {
		r.commands[n] = c
	}
	r.primary[c.Name()] = c
	return nil
}

// MustRegister is like Register but panics on a duplicate. Usually called
// from init().
func (r *Registry) MustRegister(c Command) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Replace registers c, first removing any command it would collide with.
func (r *Registry) Replace(c Command) {
	r.Remove(c.Name())
	for _, a := range AliasesOf(c) {
		r.Remove(a)
	}
	r.MustRegister(c)
}

// Remove unregisters the command known as name together with all its names.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.commands[name]
	if !ok {
		return
	}
	delete(r.primary, c.Name())
	for n, other := range r.commands {
		if other == c {
			delete(r.commands, n)
		}
	}
}

// Get returns the command with the given name or alias, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// GetAll returns all registered commands once each, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.primary))
	for _, c := range r.primary {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Find resolves the longest command path at the start of words, descending
// into groups. It returns the command and how many words name it; n is 0 when
// nothing matches.
func (r *Registry) Find(words []string) (c Command, n int) {
	path, n := r.Lookup(words)
	if n == 0 {
		return nil, 0
	}
	return path[n-1], n
}

// Lookup is like Find but returns every command along the path, the
// top-level command first and the matched command last.
func (r *Registry) Lookup(words []string) (path []Command, n int) {
	if len(words) == 0 {
		return nil, 0
	}
	c := r.Get(words[0])
	if c == nil {
		return nil, 0
	}
	path = append(path, c)
	for len(path) < len(words) {
		g, ok := Root(c).(Group)
		if !ok {
			break
		}
		sub := g.Subcommands().Get(words[len(path)])
		if sub == nil {
			break
		}
		c = sub
		path = append(path, c)
	}
	return path, len(path)
}
