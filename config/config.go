package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string         `yaml:"port"`
	FrontendURL string         `yaml:"frontend_url"`
	StaticDir   string         `yaml:"static_dir"`
	GinMode     string         `yaml:"gin_mode"`
	Artifacts   ArtifactConfig `yaml:"artifacts"`
	Log         LogConfig      `yaml:"log"`
}

type ArtifactConfig struct {
	ScalerPath string        `yaml:"scaler_path"`
	ModelPath  string        `yaml:"model_path"`
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Port:    "8080",
		GinMode: "release",
		Artifacts: ArtifactConfig{
			ScalerPath: "artifacts/scaler.json",
			ModelPath:  "artifacts/logistic_model.json",
			Timeout:    30 * time.Second,
			Retries:    2,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load applies defaults, then the YAML file at path (if any), then the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.Artifacts.ScalerPath = getEnv("SCALER_PATH", cfg.Artifacts.ScalerPath)
	cfg.Artifacts.ModelPath = getEnv("MODEL_PATH", cfg.Artifacts.ModelPath)
	cfg.Artifacts.Timeout = getEnvDuration("ARTIFACT_TIMEOUT", cfg.Artifacts.Timeout)
	cfg.Artifacts.Retries = getEnvInt("ARTIFACT_RETRIES", cfg.Artifacts.Retries)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

// AllowedOrigins returns the CORS origins. An empty FrontendURL allows any.
func (c Config) AllowedOrigins() []string {
	if c.FrontendURL == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
