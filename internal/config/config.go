package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the optional per-project config file, read from the project root.
const FileName = "assetgen.yaml"

// Config holds all configuration for the assetgen CLI.
type Config struct {
	ProjectRoot     string `yaml:"project_root,omitempty"`
	ModuleFolder    string `yaml:"module_folder"`    // folder holding the task folders
	ComponentFolder string `yaml:"component_folder"` // grouping folder flattened one level
	AssetsFile      string `yaml:"assets_file"`      // generated module name inside each task
	Exclude         string `yaml:"exclude"`          // paths containing this are never read
	Workers         int    `yaml:"workers"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	DatabaseURL     string `yaml:"database_url,omitempty"`
	RedisURL        string `yaml:"redis_url,omitempty"`
}

// Default returns the built-in configuration rooted at projectRoot.
func Default(projectRoot string) *Config {
	return &Config{
		ProjectRoot:     projectRoot,
		ModuleFolder:    "tasks",
		ComponentFolder: "Component",
		AssetsFile:      "assets.py",
		Exclude:         "temp",
		Workers:         4,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load reads configuration from defaults, then assetgen.yaml, then
// environment variables (a .env file in the working directory is loaded
// first if present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg := Default(getEnv("ASSETGEN_PROJECT_ROOT", wd))

	path := getEnv("ASSETGEN_CONFIG", filepath.Join(cfg.ProjectRoot, FileName))
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ProjectRoot = getEnv("ASSETGEN_PROJECT_ROOT", c.ProjectRoot)
	c.ModuleFolder = getEnv("ASSETGEN_MODULE_FOLDER", c.ModuleFolder)
	c.ComponentFolder = getEnv("ASSETGEN_COMPONENT_FOLDER", c.ComponentFolder)
	c.AssetsFile = getEnv("ASSETGEN_ASSETS_FILE", c.AssetsFile)
	c.Exclude = getEnv("ASSETGEN_EXCLUDE", c.Exclude)
	c.LogLevel = getEnv("ASSETGEN_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("ASSETGEN_LOG_FORMAT", c.LogFormat)
	c.DatabaseURL = getEnv("ASSETGEN_DATABASE_URL", c.DatabaseURL)
	c.RedisURL = getEnv("ASSETGEN_REDIS_URL", c.RedisURL)

	if v := os.Getenv("ASSETGEN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ASSETGEN_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

// Validate rejects configurations the batch cannot run with.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.ModuleFolder == "" {
		return errors.New("module_folder must not be empty")
	}
	if c.AssetsFile == "" {
		return errors.New("assets_file must not be empty")
	}
	return nil
}

// Save writes c as YAML to path. The project root is left out, it is
// always the folder holding the file.
func (c *Config) Save(path string) error {
	out := *c
	out.ProjectRoot = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// TasksRoot is the directory holding the task folders.
func (c *Config) TasksRoot() string {
	return filepath.Join(c.ProjectRoot, c.ModuleFolder)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
