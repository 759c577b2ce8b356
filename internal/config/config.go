package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"srmap/internal/resolver"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Goal     resolver.Goal `yaml:"goal"`
	LogLevel string        `yaml:"log_level"`
	Workers  int           `yaml:"workers"`
	Journal  string        `yaml:"journal"` // SQLite run journal; empty disables it
	Mappings struct {
		Primary          string   `yaml:"primary"`           // original <-> obfuscated (ProGuard layout)
		CommunityClasses []string `yaml:"community_classes"` // obfuscated <-> community class files
		CommunityMembers []string `yaml:"community_members"` // obfuscated <-> community member files
	} `yaml:"mappings"`
	Sources struct {
		BaseDir    string   `yaml:"base_dir"`
		BuildDir   string   `yaml:"build_dir"`
		Out        string   `yaml:"out"` // copies go to build_dir/out
		Roots      []string `yaml:"roots"`
		Extensions []string `yaml:"extensions"`
		InPlace    bool     `yaml:"in_place"`
	} `yaml:"sources"`
	Classes struct {
		Roots []string `yaml:"roots"`
	} `yaml:"classes"`
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// 3. Override with Environment Variables if present
	if goal := os.Getenv("SRMAP_GOAL"); goal != "" {
		g, err := resolver.ParseGoal(goal)
		if err != nil {
			return nil, fmt.Errorf("SRMAP_GOAL: %w", err)
		}
		cfg.Goal = g
	}
	if workers := os.Getenv("SRMAP_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return nil, fmt.Errorf("SRMAP_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if journal, ok := os.LookupEnv("SRMAP_JOURNAL"); ok {
		cfg.Journal = journal
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Sources.BaseDir == "" {
		c.Sources.BaseDir = "."
	}
	if c.Sources.BuildDir == "" {
		c.Sources.BuildDir = "target"
	}
	if c.Sources.Out == "" {
		c.Sources.Out = "string-remapper-sources"
	}
}

// Validate checks that the mapping files needed for remapping are configured.
func (c *Config) Validate() error {
	if c.Goal == resolver.Original {
		return nil
	}
	if c.Mappings.Primary == "" {
		return fmt.Errorf("mappings.primary is required for goal %s", c.Goal)
	}
	if c.Goal != resolver.Obfuscated && len(c.Mappings.CommunityClasses) == 0 {
		return fmt.Errorf("mappings.community_classes is required for goal %s", c.Goal)
	}
	return nil
}
