// Package places abstracts address autocompletion behind a capability
// interface so the editor and UI carry no dependency on any specific
// provider.
package places

import "context"

// Place holds the structured components of a resolved address. Applying
// a place to a stop overwrites exactly these five fields.
type Place struct {
	Address string
	City    string
	State   string
	Country string
	Postal  string
}

// Resolver converts a partial address query into structured place
// components.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*Place, error)
}
