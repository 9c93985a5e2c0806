package poster

import (
	"context"
	"sort"

	"github.com/umputun/newspost/pkg/config"
	"github.com/umputun/newspost/pkg/domain"
)

// Poster publishes a formatted post to a single platform. Implementations
// return an error for configuration problems or delivery failures, both are
// surfaced as per-platform skip reasons by the scheduler.
type Poster interface {
	Post(ctx context.Context, text, imageURL string) (domain.PostResult, error)
}

// Registry maps platform names to posters, replacing name-based dispatch
// chains with polymorphic lookup.
type Registry struct {
	posters map[string]Poster
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{posters: map[string]Poster{}}
}

// Register adds or replaces a poster for the platform name
func (r *Registry) Register(name string, p Poster) {
	r.posters[name] = p
}

// Get returns the poster for the platform name
func (r *Registry) Get(name string) (Poster, bool) {
	p, ok := r.posters[name]
	return p, ok
}

// Names returns registered platform names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.posters))
	for name := range r.posters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry builds a registry with the stock platform clients for
// every configured platform
func NewDefaultRegistry(platforms map[string]config.Platform) *Registry {
	r := NewRegistry()
	for name, cfg := range platforms {
		switch name {
		case "twitter":
			r.Register(name, NewTwitterClient(cfg))
		case "facebook":
			r.Register(name, NewFacebookClient(cfg))
		case "linkedin":
			r.Register(name, NewLinkedinClient(cfg))
		case "instagram":
			r.Register(name, NewInstagramClient(cfg))
		}
	}
	return r
}
