package provider

import (
	"github.com/spf13/viper"

	"github.com/mangamux/mangamux/internal/transport"
)

// Registry holds the fixed adapter set. It is built once at startup and
// never mutated afterwards, so lookups need no synchronization.
type Registry struct {
	order     []string
	providers map[string]Provider
}

// NewRegistry builds a registry from explicit providers, preserving
// their order for fan-out and merge seeding.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if _, dup := r.providers[p.ID()]; dup {
			continue
		}
		r.order = append(r.order, p.ID())
		r.providers[p.ID()] = p
	}
	return r
}

// DefaultRegistry builds the static provider table on a shared transport
// client. Base URLs may be overridden via providers.<id>.baseurl in the
// config, which mirrors and tests rely on; priorities stay fixed.
func DefaultRegistry(client *transport.Client) *Registry {
	configs := Configs()
	providers := make([]Provider, 0, len(configs))
	for _, cfg := range configs {
		if override := viper.GetString("providers." + cfg.ID + ".baseurl"); override != "" {
			cfg.BaseURL = override
		}
		providers = append(providers, NewAdapter(cfg, client))
	}
	return NewRegistry(providers...)
}

// Get returns the provider for id. Unknown ids return ok=false, not an
// error; callers decide what missing means.
func (r *Registry) Get(id string) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// All returns every provider in registration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.providers[id])
	}
	return out
}

// ByLanguage returns providers claiming support for lang.
func (r *Registry) ByLanguage(lang string) []Provider {
	var out []Provider
	for _, id := range r.order {
		p := r.providers[id]
		for _, l := range p.Languages() {
			if l == lang {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// WithPageSupport returns providers that can serve page images.
func (r *Registry) WithPageSupport() []Provider {
	var out []Provider
	for _, id := range r.order {
		if p := r.providers[id]; p.SupportsPages() {
			out = append(out, p)
		}
	}
	return out
}
