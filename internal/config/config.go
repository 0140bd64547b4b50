// Package config loads sv-browser settings from flags, environment and the config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/logging"
	"github.com/uconn-ofc/sv-browser/internal/lookup"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

// EnvPrefix prefixes environment overrides, e.g. SVBROWSER_STORE_PATH.
const EnvPrefix = "SVBROWSER"

// FileName is the config file name in the home directory.
const FileName = ".sv-browser.yaml"

// Config is the complete runtime configuration.
type Config struct {
	Store      StoreConfig            `mapstructure:"store"`
	Genome     GenomeConfig           `mapstructure:"genome"`
	Genomes    map[string]BuildConfig `mapstructure:"genomes"`
	Search     SearchConfig           `mapstructure:"search"`
	Tracks     TracksConfig           `mapstructure:"tracks"`
	Server     ServerConfig           `mapstructure:"server"`
	Log        logging.Config         `mapstructure:"log"`
	Candidates CandidatesConfig       `mapstructure:"candidates"`
}

// StoreConfig locates the reference database.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// GenomeConfig fixes the genome build of the deployment.
type GenomeConfig struct {
	Build string `mapstructure:"build"`
}

// BuildConfig lists the reference tracks of one genome build.
type BuildConfig struct {
	Reference []string `mapstructure:"reference"`
}

// SearchConfig tunes gene search.
type SearchConfig struct {
	Limit int `mapstructure:"limit"`
}

// TracksConfig tunes track assembly.
type TracksConfig struct {
	Workers int `mapstructure:"workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CandidatesConfig locates the candidate gene table.
type CandidatesConfig struct {
	Path string `mapstructure:"path"`
}

// SetDefaults registers default values and environment overrides on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", refdata.DriverSQLite)
	v.SetDefault("store.path", "data/ofc.db")
	v.SetDefault("genome.build", genome.DefaultBuild)
	v.SetDefault("genomes."+genome.DefaultBuild+".reference", track.DefaultReference())
	v.SetDefault("search.limit", lookup.DefaultLimit)
	v.SetDefault("tracks.workers", track.DefaultWorkers)
	v.SetDefault("server.addr", ":8050")
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatJSON)
	v.SetDefault("candidates.path", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile reads the config file at path, or ~/.sv-browser.yaml when path is
// empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.SetConfigFile(filepath.Join(home, FileName))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that don't depend on external resources.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case refdata.DriverSQLite, refdata.DriverDuckDB:
	default:
		return fmt.Errorf("store.driver: unsupported driver %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.Genome.Build) == "" {
		return fmt.Errorf("genome.build: must not be empty")
	}
	if c.Search.Limit < 0 {
		return fmt.Errorf("search.limit: must not be negative")
	}
	return nil
}

// TrackConfig converts the genome settings for the track assembler.
func (c Config) TrackConfig() track.Config {
	ref := make(map[string][]string, len(c.Genomes))
	for build, bc := range c.Genomes {
		ref[build] = bc.Reference
	}
	return track.Config{
		DefaultBuild: c.Genome.Build,
		Reference:    ref,
		Workers:      c.Tracks.Workers,
	}
}
