package cfddns

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultIPService is the endpoint used by WebResolver when no URL is given.
const DefaultIPService = "https://api.ipify.org/"

// WebResolver constructs a resolver which asks an external web service for our public IPv4 address.
//
// The service must speak http and return status "200 OK",
// with a valid IPv4 address as the first line of the response body.
// All other responses are considered an error.
//
// An empty serviceURL selects DefaultIPService.
// A nil httpClient uses http.DefaultClient.
func WebResolver(serviceURL string, httpClient *http.Client) (*PublicIPResolver, error) {
	if serviceURL == "" {
		serviceURL = DefaultIPService
	}
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing URL: %w", err)
	}
	return &PublicIPResolver{serviceURL: u, httpClient: httpClient}, nil
}

// PublicIPResolver implements Resolver using a "what is my IP" web service.
//
// The first successful lookup is remembered for the lifetime of the resolver;
// later calls to Resolve never touch the network.
// Failed lookups are not remembered.
type PublicIPResolver struct {
	httpClient *http.Client
	serviceURL *url.URL

	mu sync.Mutex
	ip string
}

// Resolve implements cfddns.Resolver.
func (wr *PublicIPResolver) Resolve(ctx context.Context) (string, error) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if wr.ip != "" {
		return wr.ip, nil
	}
	ip, err := wr.lookup(ctx)
	if err != nil {
		return "", fmt.Errorf("error looking up public IP from %s: %w", wr.serviceURL, err)
	}
	wr.ip = ip.String()
	return wr.ip, nil
}

func (wr *PublicIPResolver) lookup(ctx context.Context) (netip.Addr, error) {
	// 15 seconds is an eternity for the size of the request we're making,
	// but this ensures that Resolve eventually returns even with context.Background
	// and http.DefaultClient (which has no timeout).
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wr.serviceURL.String(), nil)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	httpclient := wr.httpClient
	if httpclient == nil {
		httpclient = http.DefaultClient
	}

	resp, err := httpclient.Do(req)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("http request returned %s", resp.Status)
	}

	ipstring, _ := bufio.NewReader(resp.Body).ReadString('\n')
	ip, err := netip.ParseAddr(strings.TrimSpace(ipstring))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("error parsing IP address from response body: %w", err)
	}
	if !ip.Is4() {
		return netip.Addr{}, fmt.Errorf("expected an IPv4 address; got %s", ip)
	}
	return ip, nil
}
