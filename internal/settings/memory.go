package settings

import (
	"context"
	"sync"
)

// MemoryProvider serves a mutable in-process copy of the settings. Used in
// tests and single-binary deployments without a shared cache.
type MemoryProvider struct {
	mu       sync.RWMutex
	settings Settings
}

func NewMemoryProvider(initial Settings) *MemoryProvider {
	return &MemoryProvider{settings: initial}
}

func (p *MemoryProvider) Get(_ context.Context) (Settings, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings, nil
}

// Update replaces the served settings.
func (p *MemoryProvider) Update(s Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = s
}
