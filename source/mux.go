package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/arloliu/bitplane/errs"
)

// Mux routes names to sources by URL scheme. Names without a scheme go to the
// fallback source.
type Mux struct {
	mu       sync.RWMutex
	fallback Source
	schemes  map[string]Source
}

var _ Source = (*Mux)(nil)

// NewMux creates a router that sends plain paths to fallback.
func NewMux(fallback Source) *Mux {
	return &Mux{
		fallback: fallback,
		schemes:  make(map[string]Source),
	}
}

// Handle routes names starting with scheme:// to src.
func (m *Mux) Handle(scheme string, src Source) *Mux {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.schemes[scheme] = src

	return m
}

// Open dispatches name to the source registered for its scheme.
func (m *Mux) Open(ctx context.Context, name string) (Image, error) {
	src, err := m.route(name)
	if err != nil {
		return nil, &errs.FileOpenError{Path: name, Err: err}
	}

	return src.Open(ctx, name)
}

func (m *Mux) route(name string) (Source, error) {
	scheme, _, ok := strings.Cut(name, "://")
	if !ok {
		if m.fallback == nil {
			return nil, fmt.Errorf("no source for plain paths")
		}

		return m.fallback, nil
	}

	m.mu.RLock()
	src, found := m.schemes[scheme]
	m.mu.RUnlock()
	if !found {
		return nil, fmt.Errorf("no source registered for scheme %q", scheme)
	}

	return src, nil
}
