package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/utils"
)

// Config is the application configuration, loaded from an optional YAML file
// with environment variable overrides on top.
type Config struct {
	DatabasePath   string   `yaml:"database_path"`
	CorpusRoot     string   `yaml:"corpus_root"`
	OutputDir      string   `yaml:"output_dir"`
	ListenAddr     string   `yaml:"listen_addr"`
	LogMode        string   `yaml:"log_mode"`
	PageSize       int      `yaml:"page_size"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:   "data/owlmap.db",
		CorpusRoot:     "corpus",
		OutputDir:      "output",
		ListenAddr:     ":8090",
		LogMode:        "dev",
		PageSize:       50,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

// LoadConfig reads the YAML file at path when it exists, then applies
// environment overrides. An empty path skips the file entirely.
func LoadConfig(path string, log *logger.Logger) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			log.Info("No config file found, using defaults", "path", path)
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.DatabasePath = utils.GetEnv("OWLMAP_DB_PATH", cfg.DatabasePath, log)
	cfg.CorpusRoot = utils.GetEnv("OWLMAP_CORPUS_ROOT", cfg.CorpusRoot, log)
	cfg.OutputDir = utils.GetEnv("OWLMAP_OUTPUT_DIR", cfg.OutputDir, log)
	cfg.ListenAddr = utils.GetEnv("OWLMAP_LISTEN_ADDR", cfg.ListenAddr, log)
	cfg.LogMode = utils.GetEnv("OWLMAP_LOG_MODE", cfg.LogMode, log)
	cfg.PageSize = utils.GetEnvAsInt("OWLMAP_PAGE_SIZE", cfg.PageSize, log)
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	return cfg, nil
}
