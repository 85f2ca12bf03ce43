// Package config loads b64img settings from an optional YAML file, a .env
// file and B64IMG_* environment variables, in that order of precedence
// (later wins).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	b64img "github.com/nicholasgasior/b64img-go"
)

// Config holds all settings for the CLI and the engine it drives.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Engine EngineConfig `yaml:"engine"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// EngineConfig holds conversion engine settings.
type EngineConfig struct {
	EncodeChunkSize int     `yaml:"encode_chunk_size"`
	EncodeStride    int     `yaml:"encode_stride"`
	SampleChunkSize int     `yaml:"sample_chunk_size"`
	SampleStride    int     `yaml:"sample_stride"`
	MaxSampleMB     int     `yaml:"max_sample_mb"`
	Seed            *uint64 `yaml:"seed"`
	ContentSniffing bool    `yaml:"content_sniffing"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Engine: EngineConfig{
			EncodeChunkSize: b64img.DefaultEncodeChunkSize,
			EncodeStride:    b64img.DefaultEncodeStride,
			SampleChunkSize: b64img.DefaultSampleChunkSize,
			SampleStride:    b64img.DefaultSampleStride,
			MaxSampleMB:     b64img.DefaultMaxSampleMB,
		},
	}
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), dotEnvPath and the environment.
func Load(path, dotEnvPath string) (Config, error) {
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

	if dotEnvPath != "" {
		if err := LoadDotEnv(dotEnvPath); err != nil {
			return cfg, fmt.Errorf("load %s: %w", dotEnvPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if raw := os.Getenv("B64IMG_LOG_LEVEL"); raw != "" {
		c.Log.Level = raw
	}
	if raw := os.Getenv("B64IMG_LOG_FORMAT"); raw != "" {
		c.Log.Format = raw
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"B64IMG_ENCODE_CHUNK_SIZE", &c.Engine.EncodeChunkSize},
		{"B64IMG_ENCODE_STRIDE", &c.Engine.EncodeStride},
		{"B64IMG_SAMPLE_CHUNK_SIZE", &c.Engine.SampleChunkSize},
		{"B64IMG_SAMPLE_STRIDE", &c.Engine.SampleStride},
		{"B64IMG_MAX_SAMPLE_MB", &c.Engine.MaxSampleMB},
	}
	for _, v := range ints {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
		*v.dst = n
	}

	if raw := os.Getenv("B64IMG_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("B64IMG_SEED: %w", err)
		}
		c.Engine.Seed = &seed
	}
	if raw := os.Getenv("B64IMG_CONTENT_SNIFFING"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("B64IMG_CONTENT_SNIFFING: %w", err)
		}
		c.Engine.ContentSniffing = enabled
	}
	return nil
}

// EngineOptions converts the engine settings into engine options.
func (c Config) EngineOptions(logger zerolog.Logger) []b64img.Option {
	opts := []b64img.Option{
		b64img.WithLogger(logger),
		b64img.WithEncodeChunking(c.Engine.EncodeChunkSize, c.Engine.EncodeStride),
		b64img.WithSampleChunking(c.Engine.SampleChunkSize, c.Engine.SampleStride),
		b64img.WithMaxSampleMB(c.Engine.MaxSampleMB),
		b64img.WithContentSniffing(c.Engine.ContentSniffing),
	}
	if c.Engine.Seed != nil {
		opts = append(opts, b64img.WithSeed(*c.Engine.Seed))
	}
	return opts
}
