// Package config loads service settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/reelcut/internal/ports/adapters/openrouter"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderNone       = "none"

	// placeholderGeminiKey ships in sample .env files and means "not configured".
	placeholderGeminiKey = "YOUR_GEMINI_API_KEY_HERE"
)

type Config struct {
	Server    Server    `yaml:"server"`
	Storage   Storage   `yaml:"storage"`
	Tools     Tools     `yaml:"tools"`
	Generator Generator `yaml:"generator"`
	Log       Log       `yaml:"log"`
}

type Server struct {
	Addr        string `yaml:"addr"`
	UploadDir   string `yaml:"upload_dir"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
	Workers     int    `yaml:"workers"`
	QueueSize   int    `yaml:"queue_size"`
}

type Storage struct {
	OutputDir string `yaml:"output_dir"`
}

type Tools struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
}

type Generator struct {
	Provider     string        `yaml:"provider"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"base_url"`
	AllowedHosts []string      `yaml:"allowed_hosts"`
	Timeout      time.Duration `yaml:"timeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server: Server{
			Addr:        ":5000",
			UploadDir:   "uploads",
			MaxUploadMB: 500,
			Workers:     2,
			QueueSize:   32,
		},
		Storage: Storage{OutputDir: "output"},
		Tools:   Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe"},
		Generator: Generator{
			Provider: ProviderGemini,
			Timeout:  60 * time.Second,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	set(&c.Server.UploadDir, "REELCUT_UPLOAD_DIR")
	set(&c.Storage.OutputDir, "REELCUT_OUTPUT_DIR")
	set(&c.Tools.FFmpeg, "FFMPEG_PATH")
	set(&c.Tools.FFprobe, "FFPROBE_PATH")
	set(&c.Log.Level, "REELCUT_LOG_LEVEL")
	set(&c.Generator.Provider, "REELCUT_GENERATOR")
	c.Generator.Provider = strings.ToLower(c.Generator.Provider)

	switch c.Generator.Provider {
	case ProviderGemini:
		set(&c.Generator.APIKey, "GEMINI_API_KEY")
		set(&c.Generator.Model, "GEMINI_MODEL")
	case ProviderOpenRouter:
		set(&c.Generator.APIKey, "OPENROUTER_API_KEY")
		set(&c.Generator.Model, "OPENROUTER_MODEL")
		set(&c.Generator.BaseURL, "OPENROUTER_BASE_URL")
		if hosts := getenv("OPENROUTER_ALLOWED_HOSTS"); strings.TrimSpace(hosts) != "" {
			c.Generator.AllowedHosts = strings.Split(hosts, ",")
		}
	}
	if c.Generator.APIKey == placeholderGeminiKey {
		c.Generator.APIKey = ""
	}
}

// HasGenerator reports whether a remote generator should be built.
func (c Config) HasGenerator() bool {
	return c.Generator.Provider != ProviderNone && c.Generator.APIKey != ""
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb must be > 0, got %d", c.Server.MaxUploadMB))
	}
	if c.Server.Workers <= 0 {
		errs = append(errs, fmt.Errorf("server.workers must be > 0, got %d", c.Server.Workers))
	}
	if c.Server.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("server.queue_size must be >= 0, got %d", c.Server.QueueSize))
	}
	if c.Storage.OutputDir == "" {
		errs = append(errs, errors.New("storage.output_dir is empty"))
	}
	if c.Tools.FFmpeg == "" || c.Tools.FFprobe == "" {
		errs = append(errs, errors.New("tools.ffmpeg and tools.ffprobe are required"))
	}
	switch c.Generator.Provider {
	case ProviderGemini, ProviderNone:
	case ProviderOpenRouter:
		if err := openrouter.ValidateBaseURL(c.Generator.BaseURL, c.Generator.AllowedHosts); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("generator.provider %q is not one of gemini, openrouter, none", c.Generator.Provider))
	}
	if c.Generator.Timeout < 0 {
		errs = append(errs, errors.New("generator.timeout must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

