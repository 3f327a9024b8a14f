package cmd

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultRegistry is filled from init() functions of command packages.
var DefaultRegistry = NewRegistry()

// Registry stores commands by name. Dispatch belongs to the transport.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds c. Two commands with one name would shadow each other in
// the slash command list, so a duplicate panics at init.
func (r *Registry) Register(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[c.Name()]; dup {
		panic(fmt.Sprintf("cmd: command %q registered twice", c.Name()))
	}
	r.commands[c.Name()] = c
}

// Len reports how many commands are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Get returns the command named name, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// GetAll returns all commands sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
