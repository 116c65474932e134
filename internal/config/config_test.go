package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://2ch.hk" || cfg.Moderation != ModerationConsole {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zet.yaml")
	data := "saves_path: /tmp/a.db\nmake_rethreads: false\nmoderation: allow\ntimezone: UTC\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("USERCODE_AUTH", "secret")
	t.Setenv("USE_PROXY", "true")
	t.Setenv("ZET_OBSERVER_ADDR", "127.0.0.1:8090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SavesPath != "/tmp/a.db" || cfg.MakeRethreads || cfg.Moderation != ModerationAllow {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.OpPostPath != "resources/op_post.txt" {
		t.Errorf("Expected default op post path, got %q", cfg.OpPostPath)
	}
	if cfg.Env.UsercodeAuth != "secret" || !cfg.Env.UseProxy {
		t.Errorf("Env not applied: %+v", cfg.Env)
	}
	if cfg.ObserverAddr != "127.0.0.1:8090" {
		t.Errorf("Expected observer override, got %q", cfg.ObserverAddr)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zet.yaml")
	os.WriteFile(path, []byte("moderation: maybe\n"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for unknown moderation mode")
	}

	os.WriteFile(path, []byte("saves_path: [\n"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for broken YAML")
	}
}
