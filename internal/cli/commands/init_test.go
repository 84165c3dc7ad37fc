package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lessond-dev/lessond/internal/cli/config"
)

func TestInitCommand_NewConfig(t *testing.T) {
	tempDir := t.TempDir()
	mustChdir(t, tempDir)

	err := runInitWithOptions([]string{"http://192.168.1.100:8080"}, &initOptions{skipBrowser: true})
	if err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	configPath := filepath.Join(tempDir, config.ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("lessond.json was not created")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("failed to load created config: %v", err)
	}

	if len(cfg.Servers) != 1 {
		t.Fatalf("expected 1 server, got %d", len(cfg.Servers))
	}

	if cfg.Servers[0].URL != "http://192.168.1.100:8080" {
		t.Errorf("expected URL 'http://192.168.1.100:8080', got '%s'", cfg.Servers[0].URL)
	}

	if cfg.Servers[0].Alias != "server-1" {
		t.Errorf("expected alias 'server-1', got '%s'", cfg.Servers[0].Alias)
	}
}

func TestInitCommand_NormalizesBareHost(t *testing.T) {
	tempDir := t.TempDir()
	mustChdir(t, tempDir)

	err := runInitWithOptions([]string{"lessons.example.com"}, &initOptions{skipBrowser: true})
	if err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	cfg, err := config.Load(filepath.Join(tempDir, config.ConfigFileName))
	if err != nil {
		t.Fatalf("failed to load created config: %v", err)
	}

	if cfg.Servers[0].URL != "http://lessons.example.com" {
		t.Errorf("expected scheme-normalized URL, got '%s'", cfg.Servers[0].URL)
	}
}

func TestInitCommand_AppendsToExistingConfig(t *testing.T) {
	tempDir := t.TempDir()
	mustChdir(t, tempDir)

	if err := runInitWithOptions([]string{"http://one.example.com"}, &initOptions{skipBrowser: true}); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := runInitWithOptions([]string{"http://two.example.com"}, &initOptions{skipBrowser: true}); err != nil {
		t.Fatalf("second init failed: %v", err)
	}

	cfg, err := config.Load(filepath.Join(tempDir, config.ConfigFileName))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(cfg.Servers))
	}

	if cfg.Servers[1].Alias != "server-2" {
		t.Errorf("expected alias 'server-2', got '%s'", cfg.Servers[1].Alias)
	}
}

func TestInitCommand_DuplicateServerNotAdded(t *testing.T) {
	tempDir := t.TempDir()
	mustChdir(t, tempDir)

	for i := 0; i < 2; i++ {
		if err := runInitWithOptions([]string{"http://one.example.com"}, &initOptions{skipBrowser: true}); err != nil {
			t.Fatalf("init %d failed: %v", i+1, err)
		}
	}

	cfg, err := config.Load(filepath.Join(tempDir, config.ConfigFileName))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Servers) != 1 {
		t.Errorf("expected duplicate server to be skipped, got %d servers", len(cfg.Servers))
	}
}
