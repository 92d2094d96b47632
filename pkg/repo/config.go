package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/odvcencio/dotlog/pkg/object"
)

// Config stores repository-local settings in .log/config.toml.
type Config struct {
	Core    CoreConfig    `toml:"core"`
	Objects ObjectsConfig `toml:"objects"`
}

type CoreConfig struct {
	// DefaultBranch is the branch created by Init.
	DefaultBranch string `toml:"default_branch"`
	// SkipUnsupported makes snapshots skip symlinks, devices and sockets
	// with a warning instead of failing.
	SkipUnsupported bool `toml:"skip_unsupported"`
	// StatCache enables the .log/index.db cache of file fingerprints.
	StatCache bool `toml:"stat_cache"`
}

type ObjectsConfig struct {
	// Compression is the object codec: "none" or "zstd". It is fixed when
	// the repository is created.
	Compression string `toml:"compression"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			DefaultBranch: "master",
			StatCache:     true,
		},
		Objects: ObjectsConfig{Compression: object.CodecNone},
	}
}

// ReadConfig reads a config file. Missing files and missing keys fall
// back to DefaultConfig.
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := validBranchName(c.Core.DefaultBranch); err != nil {
		return fmt.Errorf("core.default_branch: %w", err)
	}
	if _, err := object.ParseCodec(c.Objects.Compression); err != nil {
		return fmt.Errorf("objects.compression: %w", err)
	}
	return nil
}

// WriteConfig atomically writes cfg to dir/config.toml.
func WriteConfig(dir string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, configFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// SaveConfig writes the repository's current Config back to disk.
func (r *Repo) SaveConfig() error {
	return WriteConfig(r.LogDir, r.Config)
}
