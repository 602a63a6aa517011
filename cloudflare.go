package cfddns

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloudflare/cloudflare-go"
)

// Cloudflare returns a ProviderFunc that connects to the Cloudflare v4 API.
// opts are passed to the cloudflare-go client, e.g. cloudflare.HTTPClient or cloudflare.BaseURL.
func Cloudflare(opts ...cloudflare.Option) ProviderFunc {
	return func(auth Auth) (Provider, error) {
		return newCloudflareProvider(auth, opts...)
	}
}

func newCloudflareProvider(auth Auth, opts ...cloudflare.Option) (cf *cloudflareProvider, err error) {
	cf = new(cloudflareProvider)
	if auth.Email != "" {
		key := auth.Key
		if key == "" {
			key = auth.Token
		}
		cf.api, err = cloudflare.New(key, auth.Email, opts...)
	} else {
		cf.api, err = cloudflare.NewWithAPIToken(auth.Token, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating cloudflare api client: %w", err)
	}
	cf.logger = discard
	return cf, nil
}

// cloudflareProvider implements cfddns.Provider.
//
// It should be constructed using newCloudflareProvider.
type cloudflareProvider struct {
	api    *cloudflare.API
	logger *log.Logger
}

func (cf *cloudflareProvider) SetLogger(logger *log.Logger) {
	cf.logger = logger
}

func (cf *cloudflareProvider) ListDNSRecords(ctx context.Context, zoneID string) ([]Record, error) {
	if cf.api == nil {
		return nil, errors.New("cfddns.cloudflareProvider.ListDNSRecords: provider should be constructed with newCloudflareProvider")
	}

	cf.logger.Printf("listing DNS records for zone %s...\n", zoneID)
	records, _, err := cf.api.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.ListDNSRecordsParams{})
	if err != nil {
		return nil, fmt.Errorf("error listing DNS records for zone %s: %w", zoneID, err)
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, Record{
			ID:      r.ID,
			Type:    r.Type,
			Name:    r.Name,
			Content: r.Content,
			TTL:     r.TTL,
			Proxied: r.Proxied,
			Comment: r.Comment,
			Tags:    r.Tags,
		})
	}
	return out, nil
}

func (cf *cloudflareProvider) UpdateDNSRecord(ctx context.Context, zoneID string, record Record) error {
	if cf.api == nil {
		return errors.New("cfddns.cloudflareProvider.UpdateDNSRecord: provider should be constructed with newCloudflareProvider")
	}

	// The tags field is always encoded, so send an empty list rather than null.
	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	updated, err := cf.api.UpdateDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.UpdateDNSRecordParams{
		ID:      record.ID,
		Type:    record.Type,
		Name:    record.Name,
		Content: record.Content,
		TTL:     record.TTL,
		Proxied: record.Proxied,
		Comment: record.Comment,
		Tags:    tags,
	})
	if err != nil {
		return fmt.Errorf("error updating DNS record %s: %w", record.ID, err)
	}
	cf.logger.Printf("successfully updated record: %s %s %s\n", updated.Type, updated.Name, updated.Content)
	return nil
}
