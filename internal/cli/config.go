package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Store backends.
const (
	storeFile  = "file"
	storeMongo = "mongo"
)

// Cache backends.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

const defaultListen = "127.0.0.1:8080"

// Config is the contents of config.toml.
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	listen = ":8080"
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// StoreConfig selects where projects are kept.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// CacheConfig selects where derived artifacts are cached.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// ServerConfig configures "modelgraph serve".
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// loadConfig reads the config file at path. An empty path selects the
// default location, which may be absent. Environment overrides and defaults
// are applied before validation.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		path = os.Getenv("MODELGRAPH_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		if dir, err := configDir(); err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			switch {
			case os.IsNotExist(err) && !explicit:
			case os.IsNotExist(err):
				return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
			default:
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MODELGRAPH_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("MODELGRAPH_MONGO_URI"); v != "" {
		c.Store.MongoURI = v
		if c.Store.Backend == "" {
			c.Store.Backend = storeMongo
		}
	}
	if v := os.Getenv("MODELGRAPH_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
		if c.Cache.Backend == "" {
			c.Cache.Backend = cacheRedis
		}
	}
	if v := os.Getenv("MODELGRAPH_LISTEN"); v != "" {
		c.Server.Listen = v
	}
}

func (c *Config) applyDefaults() error {
	if c.Store.Backend == "" {
		c.Store.Backend = storeFile
	}
	if c.Store.Backend == storeFile && c.Store.Dir == "" {
		dir, err := dataDir()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate data directory")
		}
		c.Store.Dir = dir
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cacheFile
	}
	if c.Cache.Backend == cacheFile && c.Cache.Dir == "" {
		if dir, err := cacheDir(); err == nil {
			c.Cache.Dir = dir
		} else {
			c.Cache.Backend = cacheNone
		}
	}
	if c.Server.Listen == "" {
		c.Server.Listen = defaultListen
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case storeFile:
	case storeMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store backend %q needs mongo_uri", storeMongo)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (want %s or %s)",
			c.Store.Backend, storeFile, storeMongo)
	}
	switch c.Cache.Backend {
	case cacheFile, cacheNone:
	case cacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend %q needs redis_addr", cacheRedis)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want %s, %s or %s)",
			c.Cache.Backend, cacheFile, cacheRedis, cacheNone)
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns ~/.config/modelgraph unless XDG_CONFIG_HOME is set.
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// dataDir returns ~/.local/share/modelgraph/projects unless XDG_DATA_HOME is set.
func dataDir() (string, error) {
	dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "projects"), nil
}

// cacheDir returns ~/.cache/modelgraph unless XDG_CACHE_HOME is set.
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
