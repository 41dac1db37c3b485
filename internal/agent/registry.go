package agent

import (
	"fmt"
	"strings"

	"tradecouncil/internal/logger"
)

// defaultSelection is how many registered agents serve as the fallback
// set when a request names none (or only unknown ones).
const defaultSelection = 3

// Registry maps agent names to implementations. It is populated by
// explicit Register calls at process start and immutable afterwards;
// request handlers receive it by reference. No reflection, no scanning.
type Registry struct {
	order  []string
	agents map[string]Agent
	sealed bool
}

func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent under its lowercase name. Registration order is
// preserved; it determines the default selection.
func (r *Registry) Register(a Agent) error {
	if r.sealed {
		return fmt.Errorf("registry is sealed")
	}
	name := strings.ToLower(strings.TrimSpace(a.Name()))
	if name == "" {
		return fmt.Errorf("agent name cannot be empty")
	}
	if _, dup := r.agents[name]; dup {
		return fmt.Errorf("agent %q already registered", name)
	}
	r.agents[name] = a
	r.order = append(r.order, name)
	return nil
}

// Seal freezes the registry; further Register calls fail.
func (r *Registry) Seal() { r.sealed = true }

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Lookup finds an agent by case-insensitive name.
func (r *Registry) Lookup(name string) (Agent, bool) {
	a, ok := r.agents[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Select filters the requested names against the registry. Unknown names
// are dropped with a warning, not an error; an empty result falls back to
// the first three registered agents.
func (r *Registry) Select(requested []string) []Agent {
	var selected []Agent
	var unknown []string
	for _, name := range requested {
		if a, ok := r.Lookup(name); ok {
			selected = append(selected, a)
		} else if strings.TrimSpace(name) != "" {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		logger.Warnf("[agent] ignoring unknown agents: %s", strings.Join(unknown, ", "))
	}
	if len(selected) == 0 {
		for _, name := range r.order {
			selected = append(selected, r.agents[name])
			if len(selected) == defaultSelection {
				break
			}
		}
	}
	return selected
}
