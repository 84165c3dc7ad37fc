package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare host", "lessons.example.com", "http://lessons.example.com"},
		{"host with port", "localhost:8080", "http://localhost:8080"},
		{"http url untouched", "http://localhost:8080", "http://localhost:8080"},
		{"https url untouched", "https://lessons.example.com", "https://lessons.example.com"},
		{"trailing slash stripped", "http://localhost:8080/", "http://localhost:8080"},
		{"surrounding whitespace", "  localhost:8080  ", "http://localhost:8080"},
		{"empty string stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURL(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ConfigFileName)

	cfg := &Config{
		Servers: []Server{
			{URL: "http://localhost:8080", Alias: "local"},
			{URL: "https://lessons.example.com", Alias: "production"},
		},
	}

	if err := Save(configPath, cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(loaded.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(loaded.Servers))
	}

	if loaded.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("unexpected first server URL: %s", loaded.Servers[0].URL)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error loading invalid JSON, got nil")
	}
}

func TestGetServerByAlias(t *testing.T) {
	cfg := &Config{
		Servers: []Server{
			{URL: "http://localhost:8080", Alias: "local"},
			{URL: "https://lessons.example.com", Alias: "production"},
		},
	}

	server, err := cfg.GetServerByAlias("production")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.URL != "https://lessons.example.com" {
		t.Errorf("unexpected server URL: %s", server.URL)
	}

	if _, err := cfg.GetServerByAlias("missing"); err == nil {
		t.Error("expected error for unknown alias, got nil")
	}
}

func TestGetDefaultServer(t *testing.T) {
	empty := &Config{}
	if _, err := empty.GetDefaultServer(); err == nil {
		t.Error("expected error for empty server list, got nil")
	}

	cfg := &Config{
		Servers: []Server{
			{URL: "http://localhost:8080", Alias: "local"},
		},
	}
	server, err := cfg.GetDefaultServer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Alias != "local" {
		t.Errorf("unexpected default server alias: %s", server.Alias)
	}
}
