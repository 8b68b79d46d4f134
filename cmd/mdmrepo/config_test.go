package main

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/loykin/mdmrepo"
	"github.com/spf13/viper"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestConfigDoc_Load(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.yaml", `---
env_file: .env
repo:
  base_url: https://mdm.example.com/munki/plugin
  transport: curl
  curl_path: /opt/bin/curl
  config_file: /tmp/prefs.plist
client:
  min_tls_version: "1.3"
logging:
  level: debug
  format: json
  mask_sensitive: false
`)
	var doc ConfigDoc
	if err := doc.Load(p); err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Repo.BaseURL != "https://mdm.example.com/munki/plugin" || doc.Repo.Transport != "curl" || doc.Repo.CurlPath != "/opt/bin/curl" {
		t.Fatalf("unexpected repo section: %+v", doc.Repo)
	}
	if doc.Repo.ConfigFile != "/tmp/prefs.plist" || doc.EnvFile != ".env" {
		t.Fatalf("unexpected paths: %+v", doc)
	}
	if doc.Logging.Level != "debug" || doc.Logging.Format != "json" {
		t.Fatalf("unexpected logging: %+v", doc.Logging)
	}
	if doc.Logging.MaskSensitive == nil || *doc.Logging.MaskSensitive {
		t.Fatal("mask_sensitive=false not decoded")
	}
}

func TestConfigDoc_Load_Directory(t *testing.T) {
	var doc ConfigDoc
	if err := doc.Load(t.TempDir()); err == nil {
		t.Fatal("expected error loading a directory")
	}
}

func TestConfigDoc_Overlay(t *testing.T) {
	doc := ConfigDoc{Repo: RepoConfig{BaseURL: "https://from-file", Transport: "curl"}}
	err := doc.Overlay(map[string]interface{}{
		"repo.base_url":  "https://from-flag",
		"repo.transport": "",
		"logging.level":  "warn",
		"env_file":       "prod.env",
	})
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if doc.Repo.BaseURL != "https://from-flag" {
		t.Fatalf("flag should win, got %q", doc.Repo.BaseURL)
	}
	if doc.Repo.Transport != "curl" {
		t.Fatalf("empty override must not clear the file value, got %q", doc.Repo.Transport)
	}
	if doc.Logging.Level != "warn" || doc.EnvFile != "prod.env" {
		t.Fatalf("unexpected overlay result: %+v", doc)
	}
}

func TestConfigDoc_SetupLogging(t *testing.T) {
	prev := mdmrepo.GetLogger()
	t.Cleanup(func() { mdmrepo.SetDefaultLogger(prev) })

	doc := ConfigDoc{Logging: LoggingConfig{Level: "DEBUG", Format: "json"}}
	logger, err := doc.SetupLogging()
	if err != nil || logger == nil {
		t.Fatalf("setup: %v", err)
	}
	if mdmrepo.GetLogger() != logger {
		t.Fatal("logger was not installed as default")
	}
	if !logger.Enabled(mdmrepo.LogLevelDebug) {
		t.Fatal("debug level not applied")
	}

	for _, bad := range []ConfigDoc{
		{Logging: LoggingConfig{Level: "loud"}},
		{Logging: LoggingConfig{Format: "xml"}},
	} {
		if _, err := bad.SetupLogging(); err == nil {
			t.Errorf("expected error for %+v", bad.Logging)
		}
	}
}

func TestConfigDoc_TLSConfig(t *testing.T) {
	var doc ConfigDoc
	cfg, err := doc.TLSConfig()
	if err != nil || cfg != nil {
		t.Fatalf("empty client section should yield nil, got %v err=%v", cfg, err)
	}

	doc.Client = ClientConfig{MinTLSVersion: "tls1.3", Insecure: true}
	cfg, err = doc.TLSConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinVersion != tls.VersionTLS13 || !cfg.InsecureSkipVerify {
		t.Fatalf("unexpected tls config: %+v", cfg)
	}

	doc.Client = ClientConfig{MaxTLSVersion: "1.0"}
	if _, err := doc.TLSConfig(); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestConfigDoc_Options(t *testing.T) {
	doc := ConfigDoc{Repo: RepoConfig{BaseURL: " https://x/p ", Transport: "curl", TempDir: "/var/tmp"}}
	opts, err := doc.Options(nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.BaseURL != "https://x/p" || opts.Transport != "curl" || opts.TempDir != "/var/tmp" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestLoadConfig_FlagsOverFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.yaml", `---
repo:
  base_url: https://from-file/munki/plugin
  transport: curl
`)
	v := viper.New()
	v.Set("config", p)
	v.Set("repo.base_url", "https://from-flag/munki/plugin")

	doc, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if doc.Repo.BaseURL != "https://from-flag/munki/plugin" {
		t.Fatalf("expected flag value, got %q", doc.Repo.BaseURL)
	}
	if doc.Repo.Transport != "curl" {
		t.Fatalf("expected file value, got %q", doc.Repo.Transport)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := loadConfig(v); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
