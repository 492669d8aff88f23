package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads layered configuration from configDir: base.yaml first,
// then {env}.yaml merged on top, then ${VAR} placeholders filled from
// secrets.env when that file exists. A missing env file is not an error.
func LoadConfig(env string, configDir string) (map[string]interface{}, error) {
	if configDir == "" {
		configDir = "config"
	}

	merged, err := readYAML(filepath.Join(configDir, "base.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load base.yaml: %w", err)
	}

	if env != "" && env != "base" {
		envPath := filepath.Join(configDir, env+".yaml")
		if _, statErr := os.Stat(envPath); statErr == nil {
			overlay, err := readYAML(envPath)
			if err != nil {
				return nil, fmt.Errorf("load %s.yaml: %w", env, err)
			}
			merged = mergeMaps(merged, overlay)
		}
	}

	secretsPath := filepath.Join(configDir, "secrets.env")
	if _, statErr := os.Stat(secretsPath); statErr == nil {
		secrets, err := readEnvFile(secretsPath)
		if err != nil {
			return nil, fmt.Errorf("load secrets.env: %w", err)
		}
		merged = substitute(merged, secrets)
	}

	return merged, nil
}

func readYAML(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// readEnvFile parses KEY=VALUE lines, skipping blanks and # comments.
// Values may be single or double quoted.
func readEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"`)
		value = strings.Trim(value, `'`)
		env[strings.TrimSpace(key)] = value
	}
	return env, sc.Err()
}

// mergeMaps returns dst with src merged over it, recursing into maps that
// exist on both sides. Neither input is modified.
func mergeMaps(dst, src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if base, ok := out[k].(map[string]interface{}); ok {
			if overlay, ok := v.(map[string]interface{}); ok {
				out[k] = mergeMaps(base, overlay)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// substitute replaces ${VAR} placeholders in all string values, walking
// nested maps.
func substitute(cfg map[string]interface{}, env map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(cfg))
	for k, v := range cfg {
		switch val := v.(type) {
		case string:
			out[k] = expand(val, env)
		case map[string]interface{}:
			out[k] = substitute(val, env)
		default:
			out[k] = v
		}
	}
	return out
}

func expand(s string, env map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	for key, value := range env {
		s = strings.ReplaceAll(s, "${"+key+"}", value)
	}
	return s
}

// GetEnv returns the environment variable value or a default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetConfigEnv returns the active config environment (CONFIG_ENV, default local).
func GetConfigEnv() string {
	return GetEnv("CONFIG_ENV", "local")
}
