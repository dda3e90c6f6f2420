package calibration

import (
	"context"
	"fmt"
	"sync"
)

// Loader loads the calibration named name from an external source.
type Loader func(ctx context.Context, name string) (*Calibration, error)

// Registry maps sources to loaders. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	loaders map[Source]Loader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[Source]Loader)}
}

// Register adds l as loader of src.
func (r *Registry) Register(src Source, l Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loaders[src]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, src)
	}
	r.loaders[src] = l
	return nil
}

// Resolve returns c itself if it has no Source, else the validated
// calibration loaded from its source. The loaded calibration keeps the
// name of c.
func (r *Registry) Resolve(ctx context.Context, c *Calibration) (*Calibration, error) {
	if c.Source == nil {
		return c, nil
	}
	r.mu.RLock()
	l, ok := r.loaders[*c.Source]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, c.Source)
	}

	loaded, err := l(ctx, c.Name)
	if err != nil {
		return nil, fmt.Errorf("calibration: load %q from %s: %w", c.Name, c.Source, err)
	}
	out := *loaded
	out.Name = c.Name
	out.Source = nil
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Static returns a loader that always yields a copy of c.
func Static(c Calibration) Loader {
	return func(ctx context.Context, _ string) (*Calibration, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := c
		return &out, nil
	}
}
