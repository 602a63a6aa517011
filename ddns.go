package cfddns

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/cloudflare/cloudflare-go"
)

var discard = log.New(io.Discard, "", log.LstdFlags)

// New creates a Client.
//
// Without options, the client looks the public IP up once from DefaultIPService,
// talks to Cloudflare and discards log output.
func New(options ...ClientOption) (*Client, error) {
	c := &Client{}
	for i, opt := range options {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("cfddns.New: option %d returned an error: %s", i, err)
		}
	}

	if c.Resolver == nil {
		r, err := WebResolver(DefaultIPService, c.httpClient)
		if err != nil {
			return nil, fmt.Errorf("cfddns.New: error creating default resolver: %w", err)
		}
		c.Resolver = r
	}
	if c.newProvider == nil {
		var opts []cloudflare.Option
		if c.httpClient != nil {
			opts = append(opts, cloudflare.HTTPClient(c.httpClient))
		}
		c.newProvider = Cloudflare(opts...)
	}
	if c.logger == nil {
		c.logger = discard
	}
	return c, nil
}

// ClientOption configures a Client created by New.
type ClientOption func(*Client) error

// UsingResolver sets where the public IP comes from.
// The resolver is consulted at most once per zone;
// use a caching resolver such as *PublicIPResolver to look the IP up once per run.
func UsingResolver(resolver Resolver) ClientOption {
	return func(c *Client) error {
		c.Resolver = resolver
		return nil
	}
}

// UsingWebResolver resolves the public IP with the given "what is my IP" service.
func UsingWebResolver(serviceURL string) ClientOption {
	return func(c *Client) (err error) {
		if c.Resolver, err = WebResolver(serviceURL, c.httpClient); err != nil {
			return fmt.Errorf("cfddns.UsingWebResolver: %w", err)
		}
		return nil
	}
}

// UsingProvider replaces the DNS provider constructor, which defaults to Cloudflare().
func UsingProvider(f ProviderFunc) ClientOption {
	return func(c *Client) error {
		c.newProvider = f
		return nil
	}
}

// UsingHTTPClient sets the http.Client used by the web resolver and the default provider,
// regardless of whether the resolver was registered before or after this option.
func UsingHTTPClient(httpclient *http.Client) ClientOption {
	return func(c *Client) error {
		if httpclient == nil {
			httpclient = http.DefaultClient
		}
		c.httpClient = httpclient
		if wr, ok := c.Resolver.(*PublicIPResolver); ok {
			wr.httpClient = httpclient
		}
		return nil
	}
}

// WithLogger sets where progress messages are written. A nil logger discards them.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// Client reconciles the A records of configured zones with the public IP.
type Client struct {
	Resolver
	newProvider ProviderFunc
	httpClient  *http.Client
	logger      *log.Logger
}

// Run reconciles every zone in order.
//
// A zone that has no records is reported and skipped.
// Any other error stops the run and is returned.
func (c *Client) Run(ctx context.Context, zones []ZoneConfig) error {
	for _, z := range zones {
		ok, err := c.HandleDDNS(ctx, z.Auth, z.Zone, z.Names)
		if err != nil {
			return fmt.Errorf("zone %s: %w", z.Zone, err)
		}
		if !ok {
			c.logger.Printf("Failed to update %s\n", strings.Join(z.Names, ", "))
		}
	}
	return nil
}

// HandleDDNS runs a single reconciliation pass over names in zoneID.
//
// For each name, only the first record with exactly that name is considered.
// If it is an A record whose content differs from the public IP, it is updated.
// A record of any other type ends the search for that name.
//
// HandleDDNS returns false if the zone has no records; the IP is not resolved in that case.
// Failed updates are logged and do not affect the result.
// Errors creating the provider, listing records or resolving the IP are returned.
func (c *Client) HandleDDNS(ctx context.Context, auth Auth, zoneID string, names []string) (bool, error) {
	provider, err := c.newProvider(auth)
	if err != nil {
		return false, fmt.Errorf("error creating DNS provider: %w", err)
	}
	if p, ok := provider.(interface{ SetLogger(*log.Logger) }); ok {
		p.SetLogger(c.logger)
	}

	records, err := provider.ListDNSRecords(ctx, zoneID)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		c.logger.Printf("ERROR: no DNS records found for %s\n", zoneID)
		return false, nil
	}

	publicIP, err := c.Resolve(ctx)
	if err != nil {
		return false, fmt.Errorf("error getting public IP: %w", err)
	}

	for _, name := range names {
		found := false
		for _, r := range records {
			if r.Name != name {
				continue
			}
			found = true
			c.logger.Printf("Found %s for %s\n", r.Type, name)
			c.reconcile(ctx, provider, zoneID, r, publicIP)
			break
		}
		if !found {
			c.logger.Printf("No record found for %s\n", name)
		}
	}
	return true, nil
}

func (c *Client) reconcile(ctx context.Context, provider Provider, zoneID string, r Record, publicIP string) {
	if r.Type != "A" {
		c.logger.Printf("Record %s is not an A record, skipping\n", r.Name)
		return
	}
	if r.Content == publicIP {
		c.logger.Printf("Record %s is already current\n", r.Name)
		return
	}

	c.logger.Printf("Record %s is out of date (currently %s, should be %s)...\n", r.Name, r.Content, publicIP)
	updated := r
	updated.Content = publicIP
	if err := provider.UpdateDNSRecord(ctx, zoneID, updated); err != nil {
		c.logger.Printf("Failed to update record %s: %s\n", r.Name, err)
		c.logger.Printf("  record: id=%s type=%s name=%s content=%s\n", r.ID, r.Type, r.Name, r.Content)
		return
	}
	c.logger.Println("  Updated!")
}
