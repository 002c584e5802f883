package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	defaultDBPath    = "copilotlog.db"
	defaultExportDir = "."
)

// Config holds runtime settings for the CLI app.
type Config struct {
	DBPath    string `yaml:"db_path" toml:"db_path"`
	LogPath   string `yaml:"log_path,omitempty" toml:"log_path,omitempty"`
	Debug     bool   `yaml:"debug" toml:"debug"`
	DropDir   string `yaml:"drop_dir,omitempty" toml:"drop_dir,omitempty"`
	ExportDir string `yaml:"export_dir" toml:"export_dir"`
}

func Default() Config {
	return Config{
		DBPath:    defaultDBPath,
		ExportDir: defaultExportDir,
	}
}

// DefaultPath is ~/.config/copilotlog/config.yaml, or empty when the home
// directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "copilotlog", "config.yaml")
}

// Load reads defaults, then the config file at path (COPILOTLOG_CONFIG or the
// default location when path is empty), then environment overrides.
// Files ending in .toml are TOML, anything else YAML. A missing file is only
// an error when the path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv("COPILOTLOG_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, &cfg); err != nil {
				return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = defaultExportDir
	}
	if cfg.Debug && cfg.LogPath == "" {
		cfg.LogPath = DefaultLogPath()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Save writes cfg to path in the format its extension selects, creating the
// parent directory. An existing file is left alone unless overwrite is set.
func Save(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "# copilotlog configuration")
	if isTOML(path) {
		err = toml.NewEncoder(f).Encode(cfg)
	} else {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		err = enc.Encode(cfg)
		if closeErr := enc.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COPILOTLOG_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("COPILOTLOG_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("COPILOTLOG_DROP_DIR"); v != "" {
		cfg.DropDir = v
	}
	if v := os.Getenv("COPILOTLOG_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv("COPILOTLOG_DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		cfg.Debug = true
	}
}

// DefaultLogPath is where debug logs go when no log path is configured.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "copilotlog.log"
	}
	return filepath.Join(home, ".copilotlog", "logs", "copilotlog.log")
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if c.ExportDir == "" {
		return errors.New("ExportDir is required")
	}
	if c.DropDir != "" {
		info, err := os.Stat(c.DropDir)
		if err != nil {
			return fmt.Errorf("DropDir %s: %w", c.DropDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("DropDir must be a directory: %s", c.DropDir)
		}
	}
	return nil
}
