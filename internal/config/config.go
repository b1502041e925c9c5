package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries process-level settings. Environment variables win over
// the optional yaml file so container deployments can override a baked-in
// config without rebuilding.
type Config struct {
	DatabaseURL      string   `yaml:"database_url"`
	APIPort          string   `yaml:"api_port"`
	CORSOrigins      []string `yaml:"cors_origins"`
	SchedulerEnabled bool     `yaml:"scheduler_enabled"`
	EIBaseURL        string   `yaml:"ei_base_url"`
}

const defaultEIBaseURL = "https://www.energetika-portal.si/fileadmin/dokumenti/podrocja/energetika/energetske_izkaznice/"

func defaults() *Config {
	return &Config{
		APIPort:          "8000",
		CORSOrigins:      []string{"http://localhost:5173"},
		SchedulerEnabled: true,
		EIBaseURL:        defaultEIBaseURL,
	}
}

// Load reads the optional yaml file at path (skipped when path is empty)
// and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.APIPort = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SchedulerEnabled = b
		}
	}
	if v := os.Getenv("EI_BASE_URL"); v != "" {
		cfg.EIBaseURL = v
	}

	return cfg, nil
}
