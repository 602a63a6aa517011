// Command cfddns points the Cloudflare A records listed in
// $HOME/.config/cfddns/config.yaml at this machine's public IP address.
//
// The config path can be overridden with CFDDNS_CONFIG,
// and CFDDNS_IP skips the public IP lookup in favor of a fixed address.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kageurufu/cfddns"
	"golang.org/x/term"
)

func main() {
	logger := newLogger()
	if err := run(logger); err != nil {
		logger.Fatal(err)
	}
}

// newLogger writes plain lines to a terminal and timestamped lines everywhere else,
// so output captured by cron or a systemd timer can be correlated.
func newLogger() *log.Logger {
	flags := 0
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		flags = log.LstdFlags
	}
	return log.New(os.Stdout, "", flags)
}

func run(logger *log.Logger) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	zones, err := cfddns.LoadConfig(path, logger)
	if err != nil {
		return err
	}

	options := []cfddns.ClientOption{cfddns.WithLogger(logger)}
	if ip, found := os.LookupEnv("CFDDNS_IP"); found {
		r, err := cfddns.FromString(ip)
		if err != nil {
			return fmt.Errorf("CFDDNS_IP: %w", err)
		}
		options = append(options, cfddns.UsingResolver(r))
	}

	client, err := cfddns.New(options...)
	if err != nil {
		return fmt.Errorf("error creating cfddns.Client: %w", err)
	}
	return client.Run(context.Background(), zones)
}

func configPath() (string, error) {
	if p := env("CFDDNS_CONFIG", ""); p != "" {
		return p, nil
	}
	return cfddns.DefaultConfigPath()
}

func env(envvar string, defaultvalue string) string {
	e, found := os.LookupEnv(envvar)
	if found {
		return e
	}
	return defaultvalue
}
