package cfddns

import "context"

// Resolver looks up the address that A records should point at.
type Resolver interface {
	Resolve(context.Context) (string, error)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(context.Context) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context) (string, error) {
	return f(ctx)
}

// Provider reads and writes the DNS records of a zone.
type Provider interface {
	ListDNSRecords(ctx context.Context, zoneID string) ([]Record, error)
	UpdateDNSRecord(ctx context.Context, zoneID string, record Record) error
}

// ProviderFunc builds a Provider from the credentials of one zone.
type ProviderFunc func(Auth) (Provider, error)

// Record is a snapshot of a DNS record as returned by the provider.
//
// Only Content is changed by an update; the remaining attributes are sent back as they were read.
type Record struct {
	ID      string
	Type    string
	Name    string
	Content string

	TTL     int
	Proxied *bool
	Comment string
	Tags    []string
}
