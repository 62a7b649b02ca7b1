package gateways

import (
	"sort"

	"github.com/nivedh-m/VendorSphere/config"
)

// Registry holds the closed set of known gateways, keyed by identifier. It is
// built once at startup; an identifier missing from it is a configuration
// error, not a payment failure.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry builds a registry from the given gateways.
func NewRegistry(gws ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gws))}
	for _, gw := range gws {
		r.gateways[gw.Name()] = gw
	}
	return r
}

// NewDefaultRegistry wires every supported gateway from application config.
func NewDefaultRegistry(cfg *config.Config) *Registry {
	return NewRegistry(
		NewStripeGateway(cfg.Stripe),
		NewPayFastGateway(cfg.PayFast, cfg.BaseURL),
		NewPayTodayGateway(cfg.PayToday, cfg.BaseURL),
		NewDOPGateway(cfg.DOP, cfg.BaseURL),
	)
}

// Get returns the gateway registered under id.
func (r *Registry) Get(id string) (Gateway, bool) {
	gw, ok := r.gateways[id]
	return gw, ok
}

// Names lists the registered gateway identifiers in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
