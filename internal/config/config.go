package config

import (
	"log"
	"os"
	"strconv"

	"opsboard/pkg/config"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	WIPLimit               int  `yaml:"wip_limit"`
	NotifyIntervalMinutes  int  `yaml:"notify_interval_minutes"`
	SeedTemplatesOnStart   bool `yaml:"seed_templates_on_start"`
	ShutdownTimeoutSeconds int  `yaml:"shutdown_timeout_seconds"`
}

type Config struct {
	Server config.ServerConfig `yaml:"server"`
	DB     config.DBConfig     `yaml:"db"`
	MQ     config.MQConfig     `yaml:"mq"`
	Redis  config.RedisConfig  `yaml:"redis"`
	JWT    config.JWTConfig    `yaml:"jwt"`
	App    AppConfig           `yaml:"app"`
}

func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	overrideAppFromEnv(&cfg.App)

	applyDefaults(&cfg)
	return &cfg
}

func overrideAppFromEnv(cfg *AppConfig) {
	if raw := os.Getenv("WIP_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.WIPLimit = n
		}
	}
	if raw := os.Getenv("NOTIFY_INTERVAL_MINUTES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.NotifyIntervalMinutes = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.App.WIPLimit <= 0 {
		cfg.App.WIPLimit = 3
	}
	if cfg.App.NotifyIntervalMinutes <= 0 {
		cfg.App.NotifyIntervalMinutes = 15
	}
	if cfg.App.ShutdownTimeoutSeconds <= 0 {
		cfg.App.ShutdownTimeoutSeconds = 30
	}
}
