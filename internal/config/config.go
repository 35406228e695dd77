package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		Mode           string   `yaml:"mode"`
		SecureCookies  bool     `yaml:"secure_cookies"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Data struct {
		Backend string `yaml:"backend"` // file, memory or postgres
		Dir     string `yaml:"dir"`
	} `yaml:"data"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Session struct {
		TTL    string `yaml:"ttl"`
		Cookie string `yaml:"cookie"`
	} `yaml:"session"`
	Questions struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"questions"`
	Branding struct {
		Type           string `yaml:"type"` // local or minio
		LocalDir       string `yaml:"local_dir"`
		MinioEndpoint  string `yaml:"minio_endpoint"`
		MinioAccessKey string `yaml:"minio_access_key"`
		MinioSecretKey string `yaml:"minio_secret_key"`
		MinioBucket    string `yaml:"minio_bucket"`
		MinioUseSSL    bool   `yaml:"minio_use_ssl"`
	} `yaml:"branding"`
	Log struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"log"`
	RateLimit struct {
		MaxRequests int    `yaml:"max_requests"`
		Window      string `yaml:"window"`
	} `yaml:"rate_limit"`
}

// Load reads YAML config from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Data.Backend == "" {
		c.Data.Backend = "file"
		if c.Postgres.URL != "" {
			c.Data.Backend = "postgres"
		}
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Session.Cookie == "" {
		c.Session.Cookie = "forklift_session"
	}
	if c.Branding.Type == "" {
		c.Branding.Type = "local"
	}
	if c.Branding.LocalDir == "" {
		c.Branding.LocalDir = c.Data.Dir
	}
	if c.Branding.MinioBucket == "" {
		c.Branding.MinioBucket = "branding"
	}
	if c.Log.File == "" {
		c.Log.File = "logs/app.log"
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 10
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
