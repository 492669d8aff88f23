package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadConfigMergesEnvOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  host: localhost
  port: 5432
server:
  port: "8080"
`)
	writeFile(t, dir, "prod.yaml", `
db:
  host: db.internal
`)

	cfg, err := LoadConfig("prod", dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	db, ok := cfg["db"].(map[string]interface{})
	if !ok {
		t.Fatalf("db section missing: %v", cfg)
	}
	if db["host"] != "db.internal" {
		t.Fatalf("env file should win: %v", db["host"])
	}
	if db["port"] != 5432 {
		t.Fatalf("base values must survive the merge: %v", db["port"])
	}
	server, _ := cfg["server"].(map[string]interface{})
	if server["port"] != "8080" {
		t.Fatalf("untouched section lost: %v", cfg["server"])
	}
}

func TestLoadConfigMissingEnvFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  port: \"9090\"\n")

	cfg, err := LoadConfig("staging", dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	server, _ := cfg["server"].(map[string]interface{})
	if server["port"] != "9090" {
		t.Fatalf("base config should load alone: %v", cfg)
	}
}

func TestLoadConfigMissingBaseFails(t *testing.T) {
	if _, err := LoadConfig("local", t.TempDir()); err == nil {
		t.Fatal("missing base.yaml should fail")
	}
}

func TestLoadConfigSecretsSubstitution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
jwt:
  secret: ${JWT_SIGNING_KEY}
db:
  password: "${DB_PASS}"
`)
	writeFile(t, dir, "secrets.env", `
# comment lines are skipped
JWT_SIGNING_KEY=top-secret
DB_PASS="quoted-pw"
`)

	cfg, err := LoadConfig("", dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	jwt, _ := cfg["jwt"].(map[string]interface{})
	if jwt["secret"] != "top-secret" {
		t.Fatalf("placeholder not substituted: %v", jwt["secret"])
	}
	db, _ := cfg["db"].(map[string]interface{})
	if db["password"] != "quoted-pw" {
		t.Fatalf("quotes should be stripped from secret values: %v", db["password"])
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("LOADER_TEST_KEY", "set")
	if got := GetEnv("LOADER_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("GetEnv = %q", got)
	}
	if got := GetEnv("LOADER_TEST_ABSENT", "fallback"); got != "fallback" {
		t.Fatalf("GetEnv fallback = %q", got)
	}
}
