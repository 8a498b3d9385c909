// Package registry provides a global registry of paddle controller
// factories. AI strategies register themselves in init() functions, so the
// server can build bots by level or name without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
)

// Factory creates a new controller from the AI settings.
type Factory func(cfg config.AIConfig) engine.Controller

// StrategyInfo contains metadata about a registered strategy.
type StrategyInfo struct {
	Level int
	Name  string
	Title string
}

var (
	factories = make(map[int]Factory)
	infos     = make(map[int]StrategyInfo)
	byName    = make(map[string]int)
	mu        sync.RWMutex
)

// Register adds a controller factory under a difficulty level and name.
// Panics if the level or name is already taken.
func Register(level int, name, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[level]; exists {
		panic(fmt.Sprintf("registry: level %d already registered", level))
	}
	if _, exists := byName[name]; exists {
		panic(fmt.Sprintf("registry: strategy %q already registered", name))
	}

	factories[level] = f
	infos[level] = StrategyInfo{Level: level, Name: name, Title: title}
	byName[name] = level
}

// List returns all registered strategies, sorted by level.
func List() []StrategyInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]StrategyInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Level < result[j].Level
	})
	return result
}

// Create builds a controller for a level.
func Create(level int, cfg config.AIConfig) (engine.Controller, error) {
	mu.RLock()
	f, ok := factories[level]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown level %d", level)
	}
	return f(cfg), nil
}

// CreateByName builds a controller by strategy name.
func CreateByName(name string, cfg config.AIConfig) (engine.Controller, error) {
	mu.RLock()
	level, ok := byName[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown strategy %q", name)
	}
	return Create(level, cfg)
}

// Exists reports whether a level is registered.
func Exists(level int) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[level]
	return ok
}

// Lookup returns the metadata of a level.
func Lookup(level int) (StrategyInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := infos[level]
	return info, ok
}
