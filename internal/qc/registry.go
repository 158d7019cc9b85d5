package qc

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/annotation-qc/internal/config"
)

// Registry owns a create-once Manager lifecycle. Its lock guards only
// the lifecycle itself, decoupled from the Manager's per-instance data
// lock. Tests construct their own Registry (or call Clear) for
// isolation instead of sharing process state.
type Registry struct {
	mu      sync.Mutex
	manager *Manager
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Init creates the Manager if absent and returns it. Idempotent: a
// second call returns the existing instance and ignores the new
// configuration.
func (r *Registry) Init(cfg *config.Config, baseDir string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.manager != nil {
		zap.L().Debug("qc: registry already initialized, keeping existing manager")
		return r.manager
	}
	r.manager = NewManager(cfg, baseDir)
	return r.manager
}

// Get returns the current Manager, or nil if Init has not run.
func (r *Registry) Get() *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.manager
}

// Clear drops the current Manager.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manager = nil
}

var defaultRegistry = NewRegistry()

// Init initializes the process-wide Manager.
func Init(cfg *config.Config, baseDir string) *Manager {
	return defaultRegistry.Init(cfg, baseDir)
}

// Get returns the process-wide Manager, or nil.
func Get() *Manager {
	return defaultRegistry.Get()
}

// Clear resets the process-wide Manager.
func Clear() {
	defaultRegistry.Clear()
}
