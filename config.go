package cfddns

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned by LoadConfig when it had to create a placeholder config file.
var ErrConfigNotFound = errors.New("config not found")

// ConfigNotFoundError reports the path of the placeholder written by LoadConfig.
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config not found: created a basic config at \"%s\", please fill it out and run again", e.Path)
}

func (e *ConfigNotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}

// Auth holds the credentials for one zone.
//
// If Email is set, the legacy global API key is used (Key, falling back to Token).
// Otherwise Token is used as a scoped API token.
type Auth struct {
	Email string `yaml:"email"`
	Token string `yaml:"token"`
	Key   string `yaml:"key,omitempty"`
}

// ZoneConfig is one entry of the config file.
type ZoneConfig struct {
	Auth  Auth     `yaml:"auth"`
	Zone  string   `yaml:"zone"`
	Names []string `yaml:"names"`
}

// DefaultConfigPath returns $HOME/.config/cfddns/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cfddns", "config.yaml"), nil
}

func placeholderConfig() []ZoneConfig {
	return []ZoneConfig{{
		Auth:  Auth{Email: "", Token: ""},
		Zone:  "my_zone_id",
		Names: []string{"my.domain.name"},
	}}
}

// LoadConfig reads the zone list from path.
//
// If path does not exist, LoadConfig creates it with a single placeholder zone
// and returns a *ConfigNotFoundError, which matches ErrConfigNotFound.
// A nil logger discards messages.
func LoadConfig(path string, logger *log.Logger) ([]ZoneConfig, error) {
	if logger == nil {
		logger = discard
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Printf("Creating a basic config at %s, please fill it out\n", path)
		if err := writePlaceholder(path); err != nil {
			return nil, err
		}
		return nil, &ConfigNotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	if err := verifyPermissions(path); err != nil {
		logger.Printf("warning: %s\n", err)
	}

	zones, err := parseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing \"%s\": %w", path, err)
	}
	return zones, nil
}

func writePlaceholder(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	out, err := yaml.Marshal(placeholderConfig())
	if err != nil {
		return fmt.Errorf("error encoding placeholder config: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("unable to write \"%s\": %w", path, err)
	}
	return nil
}

func parseConfig(data []byte) ([]ZoneConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var zones []ZoneConfig
	if err := dec.Decode(&zones); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("config file is empty")
		}
		return nil, err
	}
	for i, z := range zones {
		if z.Zone == "" {
			return nil, fmt.Errorf("entry %d: missing \"zone\"", i)
		}
	}
	return zones, nil
}

// verifyPermissions reports config files that other users can read.
// The file holds API credentials, so 0600 or 0400 is expected.
func verifyPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error checking config permissions: %w", err)
	}

	if perms := info.Mode().Perm(); perms&0077 != 0 {
		return fmt.Errorf("insecure permissions for \"%s\": %w", path, permissionError(perms))
	}
	return nil
}

type permissionError fs.FileMode

func (pe permissionError) Error() string {
	return fmt.Sprintf("expected file permissions \"-rw-------\"; found \"%s\"", fs.FileMode(pe))
}
