package container

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/do/v2"
)

var (
	ErrNotFound   = errors.New("no registration for key")
	ErrDuplicate  = errors.New("key already registered")
	ErrDestroyed  = errors.New("container destroyed")
	ErrInvalidKey = errors.New("invalid registration key")
)

// Factory builds the value for one key. It receives the container the key
// is registered in, so it can look up its own dependencies.
type Factory func(c *Container) (any, error)

// Lookuper is anything a delegation can forward to.
type Lookuper interface {
	Lookup(key string) (any, error)
}

type delegation struct {
	source Lookuper
	key    string
}

// Container is a name-to-factory registry with singleton caching.
//
// Thread-safety: all methods are safe for concurrent use.
type Container struct {
	mu        sync.RWMutex
	name      string
	scope     *do.RootScope
	owned     map[string]struct{}
	delegates map[string]delegation
	destroyed bool
	logger    *slog.Logger
}

// New creates an empty container. The name only appears in logs and errors.
func New(name string, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.Default()
	}
	return &Container{
		name:      name,
		scope:     do.New(),
		owned:     make(map[string]struct{}),
		delegates: make(map[string]delegation),
		logger:    logger,
	}
}

// Name returns the container's display name.
func (c *Container) Name() string {
	return c.name
}

// Register adds a lazily-built singleton under key.
func (c *Container) Register(key string, factory Factory) error {
	if _, _, err := ParseKey(key); err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("register %q: factory is nil", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return fmt.Errorf("register %q in %s: %w", key, c.name, ErrDestroyed)
	}
	if c.hasLocked(key) {
		return fmt.Errorf("register %q in %s: %w", key, c.name, ErrDuplicate)
	}

	do.ProvideNamed(c.scope, key, func(do.Injector) (any, error) {
		return factory(c)
	})
	c.owned[key] = struct{}{}
	c.logger.Debug("registered", "container", c.name, "key", key)
	return nil
}

// RegisterValue registers an already-built value under key.
func (c *Container) RegisterValue(key string, value any) error {
	return c.Register(key, func(*Container) (any, error) {
		return value, nil
	})
}

// Delegate registers key as a live forward to sourceKey in source.
// Lookups of key always return whatever source returns for sourceKey.
func (c *Container) Delegate(key string, source Lookuper, sourceKey string) error {
	if _, _, err := ParseKey(key); err != nil {
		return err
	}
	if source == nil {
		return fmt.Errorf("delegate %q: source is nil", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return fmt.Errorf("delegate %q in %s: %w", key, c.name, ErrDestroyed)
	}
	if c.hasLocked(key) {
		return fmt.Errorf("delegate %q in %s: %w", key, c.name, ErrDuplicate)
	}

	c.delegates[key] = delegation{source: source, key: sourceKey}
	c.logger.Debug("delegated", "container", c.name, "key", key, "source_key", sourceKey)
	return nil
}

// Lookup returns the value registered under key, building it on first use.
func (c *Container) Lookup(key string) (any, error) {
	c.mu.RLock()
	if c.destroyed {
		c.mu.RUnlock()
		return nil, fmt.Errorf("lookup %q in %s: %w", key, c.name, ErrDestroyed)
	}
	d, delegated := c.delegates[key]
	_, owned := c.owned[key]
	c.mu.RUnlock()

	switch {
	case delegated:
		return d.source.Lookup(d.key)
	case owned:
		value, err := do.InvokeNamed[any](c.scope, key)
		if err != nil {
			return nil, fmt.Errorf("lookup %q in %s: %w", key, c.name, err)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("lookup %q in %s: %w", key, c.name, ErrNotFound)
	}
}

// Has reports whether key is registered, owned or delegated.
func (c *Container) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasLocked(key)
}

// IsDelegated reports whether key is a delegation.
func (c *Container) IsDelegated(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.delegates[key]
	return ok
}

// Keys returns every registered key in sorted order.
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.owned)+len(c.delegates))
	for k := range c.owned {
		keys = append(keys, k)
	}
	for k := range c.delegates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Destroyed reports whether Destroy has been called.
func (c *Container) Destroyed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.destroyed
}

// Destroy drops every registration and shuts down the locally-owned values
// that were built. Delegated values belong to their source and are left
// alone. Destroying twice returns ErrDestroyed.
func (c *Container) Destroy() error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return fmt.Errorf("destroy %s: %w", c.name, ErrDestroyed)
	}
	c.destroyed = true
	c.delegates = make(map[string]delegation)
	c.mu.Unlock()

	report := c.scope.Shutdown()
	c.logger.Debug("container destroyed", "container", c.name, "shutdown", report)
	return nil
}

func (c *Container) hasLocked(key string) bool {
	if _, ok := c.owned[key]; ok {
		return true
	}
	_, ok := c.delegates[key]
	return ok
}
