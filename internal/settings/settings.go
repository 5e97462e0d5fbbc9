// Package settings reads the CLI's TOML settings file. The settings file
// only configures *how* to reach the stored endpoint document (path or Redis
// address, domain, timeouts); the endpoint document itself lives in the
// configured store.
package settings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Settings is the CLI configuration.
type Settings struct {
	// ConfigPath is the endpoint document location for the file store.
	// Ignored when Redis is configured.
	ConfigPath string `toml:"config_path"`

	// Domain overrides the platform domain for probe URLs.
	Domain string `toml:"domain"`

	// RequestTimeoutSeconds is the HTTP timeout per upload or read attempt.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`

	// ShareConcurrency bounds concurrent uploads in a share batch.
	ShareConcurrency int `toml:"share_concurrency"`

	Redis RedisSettings `toml:"redis"`

	// Kashfiles lists the configured Kash Files instances. The first entry
	// is the default when no instance name is given on the command line.
	Kashfiles []KashfilesInstance `toml:"kashfiles"`
}

// RedisSettings selects the Redis store backend when Addr is set.
type RedisSettings struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db,omitempty"`
	Key      string `toml:"key,omitempty"`
}

// KashfilesInstance describes one Kash Files deployment in the settings file.
type KashfilesInstance struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
	Key  string `toml:"key"`
}

// Kashfile returns the instance matching name, or the first configured
// instance when name is empty. ok is false when nothing matches.
func (s *Settings) Kashfile(name string) (KashfilesInstance, bool) {
	if name == "" {
		if len(s.Kashfiles) == 0 {
			return KashfilesInstance{}, false
		}
		return s.Kashfiles[0], true
	}
	for _, inst := range s.Kashfiles {
		if inst.Name == name {
			return inst, true
		}
	}
	return KashfilesInstance{}, false
}

// Default returns Settings with the stock values: the original desktop
// client's document path, the platform domain baked into the probe URL
// contract.
func Default() (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	return &Settings{
		ConfigPath:            filepath.Join(home, ".kash_stash_config.json"),
		Domain:                "xyzpulseinfra.com",
		RequestTimeoutSeconds: 30,
		ShareConcurrency:      4,
	}, nil
}

// DefaultPath returns the settings file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "kash-stash", "settings.toml"), nil
}

// Read decodes Settings from the provided reader on top of the defaults.
func Read(r io.Reader) (*Settings, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	if _, err := toml.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

// ReadFromFile reads Settings from path. A missing file yields the defaults.
func ReadFromFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default()
		}
		return nil, fmt.Errorf("failed to open settings file: %w", err)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading settings from %s: %w", path, err)
	}
	return s, nil
}
