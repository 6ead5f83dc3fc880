package scraper

import (
	"context"
	"fmt"

	"ScreeningScanner/internal/domain"
)

// Scraper captures a single per-mall scraping strategy (Abreeza, NCCC,
// Gaisano branches, SM branches). Fetch performs the source-specific
// retrieval and parsing and populates the internal movie collection;
// Movies is safe to read only after Fetch returns. Instances are not
// reused across fetches — the registry hands out a fresh one each time.
type Scraper interface {
	Name() string
	Fetch(ctx context.Context) error
	HasMovies() bool
	Movies() []domain.MovieRecord
}

// Factory builds a fresh scraper instance for one fetch.
type Factory func() Scraper

// Registry keeps a mapping from mall names to scraper factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds or replaces a scraper factory under the given mall name.
func (r *Registry) Register(name string, f Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[name] = f
}

// Resolve constructs a fresh scraper for the named mall, or returns an
// error if no factory is registered.
func (r *Registry) Resolve(name string) (Scraper, error) {
	if f, ok := r.factories[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("scraper %s is not registered", name)
}
