package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
)

// Constructor builds a provider from validated configuration
type Constructor func(*types.ProviderConfig) (Provider, error)

// Factory creates provider instances
type Factory struct {
	mu           sync.RWMutex
	constructors map[types.ProviderID]Constructor
}

// NewFactory creates a factory with the built-in providers registered
func NewFactory() *Factory {
	f := &Factory{constructors: make(map[types.ProviderID]Constructor)}
	f.Register(types.ProviderValyu, NewValyuProvider)
	f.Register(types.ProviderTavily, NewTavilyProvider)
	return f
}

// Register registers a provider constructor
func (f *Factory) Register(id types.ProviderID, constructor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[id] = constructor
}

// Create validates config and builds the matching provider
func (f *Factory) Create(config *types.ProviderConfig) (Provider, error) {
	if config == nil {
		return nil, fmt.Errorf("invalid config: %w", types.ErrInvalidProviderID)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	f.mu.RLock()
	constructor, exists := f.constructors[config.ID]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", types.ErrProviderNotFound, config.ID)
	}
	return constructor(config)
}

// ListProviders returns the registered provider IDs in sorted order
func (f *Factory) ListProviders() []types.ProviderID {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids := make([]types.ProviderID, 0, len(f.constructors))
	for id := range f.constructors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
