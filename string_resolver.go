package cfddns

import (
	"context"
	"fmt"
	"net/netip"
)

// FromString constructs a resolver that always returns addr.
// It fails if addr is not an IPv4 address.
func FromString(addr string) (Resolver, error) {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse IP: %w", err)
	}
	if !ip.Is4() {
		return nil, fmt.Errorf("expected an IPv4 address; got %s", ip)
	}
	return stringResolver(ip.String()), nil
}

type stringResolver string

func (s stringResolver) Resolve(context.Context) (string, error) {
	return string(s), nil
}
