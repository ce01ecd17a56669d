package parser

import (
	"fmt"
	"strings"
)

// Registry holds the available delimiter sniffers.
type Registry struct {
	sniffers []Sniffer
}

// NewRegistry creates a registry with the built-in guess sniffer.
func NewRegistry() *Registry {
	return &Registry{
		sniffers: []Sniffer{
			NewGuessSniffer(),
		},
	}
}

// Register adds a new sniffer to the registry.
func (r *Registry) Register(s Sniffer) {
	r.sniffers = append(r.sniffers, s)
}

// GetSnifferByName returns a sniffer by its name.
func (r *Registry) GetSnifferByName(name string) (Sniffer, error) {
	name = strings.ToLower(name)
	for _, s := range r.sniffers {
		if strings.ToLower(s.Name()) == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sniffer not found: %s", name)
}

// Names lists registered sniffers in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sniffers))
	for _, s := range r.sniffers {
		names = append(names, s.Name())
	}
	return names
}
