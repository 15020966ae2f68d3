// Package config loads storyweaver configuration.
//
// Values are resolved in four layers, each overriding the previous one:
//
//  1. Built-in defaults ([Default]).
//  2. A TOML file, by default $XDG_CONFIG_HOME/storyweaver/config.toml.
//  3. A .env file in the working directory, loaded into the environment.
//  4. STORYWEAVER_* environment variables, e.g. STORYWEAVER_STORE_BACKEND.
//
// Example file:
//
//	[layout]
//	engine = "layered"
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	swerrors "github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/wikitext"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "STORYWEAVER_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Layout  Layout  `toml:"layout" envPrefix:"LAYOUT_"`
	Export  Export  `toml:"export" envPrefix:"EXPORT_"`
	Store   Store   `toml:"store" envPrefix:"STORE_"`
	Server  Server  `toml:"server" envPrefix:"SERVER_"`
	History History `toml:"history" envPrefix:"HISTORY_"`
}

// Layout selects and tunes the layout engine.
type Layout struct {
	Engine     string  `toml:"engine" env:"ENGINE"`
	Direction  string  `toml:"direction" env:"DIRECTION"`
	RankSep    float64 `toml:"rank_sep" env:"RANK_SEP"`
	NodeSep    float64 `toml:"node_sep" env:"NODE_SEP"`
	NodeWidth  float64 `toml:"node_width" env:"NODE_WIDTH"`
	NodeHeight float64 `toml:"node_height" env:"NODE_HEIGHT"`
}

// Options converts l to layout options.
func (l Layout) Options() layout.Options {
	return layout.Options{
		Direction:  layout.Direction(l.Direction),
		RankSep:    l.RankSep,
		NodeSep:    l.NodeSep,
		NodeWidth:  l.NodeWidth,
		NodeHeight: l.NodeHeight,
	}
}

// Export tunes the wikitext exporter.
type Export struct {
	StartOverText string `toml:"start_over_text" env:"START_OVER_TEXT"`
}

// Options converts e to exporter options.
func (e Export) Options() wikitext.Options {
	return wikitext.Options{DefaultStartOver: e.StartOverText}
}

// Store selects the project store backend.
type Store struct {
	Backend string `toml:"backend" env:"BACKEND"`

	// file
	Dir string `toml:"dir" env:"DIR"`

	// redis
	RedisAddr     string `toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" env:"REDIS_DB"`

	// mongo
	MongoURI      string `toml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase string `toml:"mongo_database" env:"MONGO_DATABASE"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr" env:"ADDR"`
}

// History bounds the undo history of editing sessions.
type History struct {
	Max int `toml:"max" env:"MAX"`
}

// Default returns the built-in configuration.
func Default() *Config {
	lo := layout.DefaultOptions()
	return &Config{
		Layout: Layout{
			Engine:     layout.EngineGraphviz,
			Direction:  string(lo.Direction),
			RankSep:    lo.RankSep,
			NodeSep:    lo.NodeSep,
			NodeWidth:  lo.NodeWidth,
			NodeHeight: lo.NodeHeight,
		},
		Store: Store{
			Backend:       BackendFile,
			Dir:           DefaultStoreDir(),
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "storyweaver",
		},
		Server:  Server{Addr: "127.0.0.1:8080"},
		History: History{Max: 50},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".storyweaver", "config.toml")
	}
	return filepath.Join(dir, "storyweaver", "config.toml")
}

// DefaultStoreDir returns the default directory of the file store.
func DefaultStoreDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "storyweaver", "projects")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".storyweaver", "projects")
	}
	return filepath.Join(home, ".local", "share", "storyweaver", "projects")
}

// Load resolves the configuration. An empty path reads [DefaultPath] when it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, swerrors.Wrap(swerrors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, swerrors.Wrap(swerrors.ErrCodeInvalidConfig, err, "read .env")
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, swerrors.Wrap(swerrors.ErrCodeInvalidConfig, err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown engines, directions and backends and
// non-positive limits.
func (c *Config) Validate() error {
	if !slices.Contains(layout.Engines(), c.Layout.Engine) {
		return swerrors.New(swerrors.ErrCodeInvalidConfig, "unknown layout engine %q", c.Layout.Engine)
	}
	switch layout.Direction(c.Layout.Direction) {
	case layout.LeftToRight, layout.TopToBottom:
	default:
		return swerrors.New(swerrors.ErrCodeInvalidConfig, "unknown layout direction %q (use LR or TB)", c.Layout.Direction)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendMongo:
	default:
		return swerrors.New(swerrors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendFile && c.Store.Dir == "" {
		return swerrors.New(swerrors.ErrCodeInvalidConfig, "store.dir is required for the file backend")
	}
	if c.History.Max < 1 {
		return swerrors.New(swerrors.ErrCodeInvalidConfig, "history.max must be at least 1")
	}
	if c.Server.Addr == "" {
		return swerrors.New(swerrors.ErrCodeInvalidConfig, "server.addr is required")
	}
	return nil
}

// String renders c as TOML.
func (c *Config) String() string {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("# encode config: %v\n", err)
	}
	return buf.String()
}
