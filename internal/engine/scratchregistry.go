package engine

import (
	"os"
	"sync"
)

// scratchRegistry tracks in-progress scratch files so they can be removed
// when the pool shuts down with workers mid-flight.
var globalScratchRegistry = &scratchRegistry{}

type scratchRegistry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// RegisterScratch adds a scratch file path to the global registry.
func RegisterScratch(path string) {
	globalScratchRegistry.mu.Lock()
	defer globalScratchRegistry.mu.Unlock()
	if globalScratchRegistry.paths == nil {
		globalScratchRegistry.paths = make(map[string]struct{})
	}
	globalScratchRegistry.paths[path] = struct{}{}
}

// DeregisterScratch removes a scratch file path from the global registry.
func DeregisterScratch(path string) {
	globalScratchRegistry.mu.Lock()
	defer globalScratchRegistry.mu.Unlock()
	delete(globalScratchRegistry.paths, path)
}

// CleanupScratchFiles removes all registered scratch files.
func CleanupScratchFiles() {
	globalScratchRegistry.mu.Lock()
	paths := make([]string, 0, len(globalScratchRegistry.paths))
	for p := range globalScratchRegistry.paths {
		paths = append(paths, p)
	}
	globalScratchRegistry.paths = nil
	globalScratchRegistry.mu.Unlock()

	for _, p := range paths {
		_ = os.Remove(p)
	}
}
