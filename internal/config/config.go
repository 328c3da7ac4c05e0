// Package config loads the CLI configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Services holds the base URLs of the external services.
type Services struct {
	Dataset     string `yaml:"dataset"`
	Translation string `yaml:"translation"`
	Wordnet     string `yaml:"wordnet"`
	Backup      string `yaml:"backup"`
}

// Config is the full CLI configuration.
type Config struct {
	StorePath      string   `yaml:"store_path"`
	SourceLanguage string   `yaml:"source_language"`
	SentenceCount  int64    `yaml:"sentence_count"`
	TranslatorID   string   `yaml:"translator_id"`
	Services       Services `yaml:"services"`
}

// Default returns the built-in configuration: the seed corpus layout
// with a store in the working directory.
func Default() *Config {
	return &Config{
		StorePath:      "seedprov.db",
		SourceLanguage: "eng_Latn",
		SentenceCount:  6193,
	}
}

// Load reads a YAML configuration file over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.StorePath == "" {
		return nil, fmt.Errorf("load config %s: store_path must not be empty", path)
	}
	if cfg.SourceLanguage == "" {
		return nil, fmt.Errorf("load config %s: source_language must not be empty", path)
	}
	return cfg, nil
}
