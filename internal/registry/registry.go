package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Rut304/Matchups-sub003/pkg/contracts"
)

// SportRegistry manages registered sport modules in registration order
type SportRegistry struct {
	sports map[string]contracts.SportModule
	order  []string
	mu     sync.RWMutex
}

// NewSportRegistry creates a new sport registry
func NewSportRegistry() *SportRegistry {
	return &SportRegistry{
		sports: make(map[string]contracts.SportModule),
	}
}

// Register adds a sport module to the registry
func (r *SportRegistry) Register(sport contracts.SportModule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sportKey := sport.GetSportKey()
	if _, exists := r.sports[sportKey]; exists {
		return fmt.Errorf("sport %s is already registered", sportKey)
	}

	r.sports[sportKey] = sport
	r.order = append(r.order, sportKey)
	return nil
}

// Get retrieves a sport module by key
func (r *SportRegistry) Get(sportKey string) (contracts.SportModule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sport, exists := r.sports[sportKey]
	return sport, exists
}

// GetAll returns all registered sports in registration order
func (r *SportRegistry) GetAll() []contracts.SportModule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sports := make([]contracts.SportModule, 0, len(r.order))
	for _, key := range r.order {
		sports = append(sports, r.sports[key])
	}
	return sports
}

// Select returns the named sports in the caller's order. An empty list selects everything.
func (r *SportRegistry) Select(sportKeys []string) ([]contracts.SportModule, error) {
	if len(sportKeys) == 0 {
		return r.GetAll(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(sportKeys))
	sports := make([]contracts.SportModule, 0, len(sportKeys))
	var unknown []string
	for _, key := range sportKeys {
		key = strings.TrimSpace(key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		sport, ok := r.sports[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		sports = append(sports, sport)
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown sport(s): %s (registered: %s)", strings.Join(unknown, ", "), strings.Join(r.order, ", "))
	}
	return sports, nil
}

// Count returns the number of registered sports
func (r *SportRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sports)
}
