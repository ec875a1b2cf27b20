package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// isolate points every XDG directory into a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))
	for _, env := range []string{"MODELGRAPH_CONFIG", "MODELGRAPH_STORE", "MODELGRAPH_MONGO_URI",
		"MODELGRAPH_REDIS_ADDR", "MODELGRAPH_LISTEN"} {
		t.Setenv(env, "")
	}
	return base
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	base := isolate(t)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store.Backend != storeFile {
		t.Errorf("store backend = %q", cfg.Store.Backend)
	}
	if want := filepath.Join(base, "data", appName, "projects"); cfg.Store.Dir != want {
		t.Errorf("store dir = %q, want %q", cfg.Store.Dir, want)
	}
	if want := filepath.Join(base, "cache", appName); cfg.Cache.Dir != want {
		t.Errorf("cache dir = %q, want %q", cfg.Cache.Dir, want)
	}
	if cfg.Server.Listen != defaultListen {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
[store]
dir = "/srv/projects"

[cache]
backend = "none"

[server]
listen = ":9000"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store.Dir != "/srv/projects" || cfg.Cache.Backend != cacheNone || cfg.Server.Listen != ":9000" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	base := isolate(t)
	dir := filepath.Join(base, "config", appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[server]\nlisten = \":7000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Listen != ":7000" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "[server]\nlisten = \":9000\"\n")
	t.Setenv("MODELGRAPH_CONFIG", path)
	t.Setenv("MODELGRAPH_MONGO_URI", "mongodb://db:27017")
	t.Setenv("MODELGRAPH_REDIS_ADDR", "cache:6379")
	t.Setenv("MODELGRAPH_LISTEN", ":8443")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store.Backend != storeMongo || cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Cache.Backend != cacheRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Listen != ":8443" {
		t.Errorf("listen = %q, want the environment to win", cfg.Server.Listen)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"not toml", "[store\n", errors.ErrCodeInvalidConfig},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n", errors.ErrCodeInvalidConfig},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidConfig},
		{"unknown store", "[store]\nbackend = \"s3\"\n", errors.ErrCodeInvalidConfig},
		{"unknown cache", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := loadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		isolate(t)
		_, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"))
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("err = %v, want FILE_NOT_FOUND", err)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if dir, _ := cacheDir(); dir != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("cacheDir() = %q with XDG_CACHE_HOME", dir)
	}
}
