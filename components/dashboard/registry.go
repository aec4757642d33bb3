package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ettle/strcase"
)

// FeedHook lets packages register feeds/generators during init().
type FeedHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []FeedHook
)

// RegisterFeedHook registers a hook executed against new registries.
func RegisterFeedHook(h FeedHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements FeedRegistry with hook + manifest support.
type Registry struct {
	mu           sync.RWMutex
	definitions  map[string]FeedDefinition
	generators   map[string]Generator
	paths        map[string]string
	manifestMeta map[string]ManifestOwner
}

// NewRegistry builds a registry with the built-in feeds and applies global hooks.
func NewRegistry() *Registry {
	reg := newEmptyRegistry()
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func newEmptyRegistry() *Registry {
	return &Registry{
		definitions:  map[string]FeedDefinition{},
		generators:   map[string]Generator{},
		paths:        map[string]string{},
		manifestMeta: map[string]ManifestOwner{},
	}
}

func (r *Registry) registerDefaults() {
	for _, def := range DefaultFeedDefinitions() {
		_ = r.RegisterDefinition(def)
		if gen, ok := DefaultGenerator(def.Code); ok {
			_ = r.RegisterGenerator(def.Code, gen)
		}
	}
}

// ApplyHooks executes registered feed hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores feed metadata. A definition without a path is
// served under /<code with dots as slashes>; a missing name is derived from
// the code.
func (r *Registry) RegisterDefinition(def FeedDefinition) error {
	def.Code = strings.TrimSpace(def.Code)
	if def.Code == "" {
		return fmt.Errorf("dashboard: feed definition code is required")
	}
	if def.Path == "" {
		def.Path = "/" + strings.ReplaceAll(def.Code, ".", "/")
	}
	if !strings.HasPrefix(def.Path, "/") {
		def.Path = "/" + def.Path
	}
	if def.Name == "" {
		def.Name = strcase.ToCase(strings.ReplaceAll(def.Code, ".", " "), strcase.TitleCase, ' ')
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.paths[def.Path]; ok && owner != def.Code {
		return fmt.Errorf("dashboard: path %s already served by %s", def.Path, owner)
	}
	if prev, ok := r.definitions[def.Code]; ok && prev.Path != def.Path {
		delete(r.paths, prev.Path)
	}
	r.definitions[def.Code] = def
	r.paths[def.Path] = def.Code
	return nil
}

// RegisterGenerator associates a generator with a definition.
func (r *Registry) RegisterGenerator(code string, generator Generator) error {
	if code == "" {
		return fmt.Errorf("dashboard: feed code is required to register generator")
	}
	if generator == nil {
		return fmt.Errorf("dashboard: generator cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("dashboard: feed definition %s not found", code)
	}
	r.generators[code] = generator
	return nil
}

// Definition fetches a feed definition by code.
func (r *Registry) Definition(code string) (FeedDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// DefinitionByPath fetches the feed served at path.
func (r *Registry) DefinitionByPath(path string) (FeedDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.paths[path]
	if !ok {
		return FeedDefinition{}, false
	}
	def, ok := r.definitions[code]
	return def, ok
}

// Generator fetches a feed generator by code.
func (r *Registry) Generator(code string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[code]
	return gen, ok
}

// ManifestOwner returns any manifest ownership metadata registered for a feed.
func (r *Registry) ManifestOwner(code string) (ManifestOwner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.manifestMeta[code]
	return meta, ok
}

// Definitions returns all registered definitions sorted by code.
func (r *Registry) Definitions() []FeedDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]FeedDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

func (r *Registry) recordManifestOwner(code string, meta ManifestOwner) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifestMeta[code] = meta
}
