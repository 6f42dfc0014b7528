package docload

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pagekit/docload/raster"
)

const (
	// DefaultMaxWorkers bounds parallel per-page extraction.
	DefaultMaxWorkers = 4

	// DefaultMaxFileSize caps staged document size (100 MB).
	DefaultMaxFileSize = 100 * 1024 * 1024
)

// Config configures a Loader.
type Config struct {
	// TextWorkers is the worker bound for parallel PDF text extraction.
	TextWorkers int `json:"text_workers" yaml:"text_workers"`

	// MaxFileSize is the maximum staged file size in bytes.
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// FS is the file system gateway documents are read through.
	FS FileSystem `json:"-" yaml:"-"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.TextWorkers <= 0 {
		c.TextWorkers = DefaultMaxWorkers
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.FS == nil {
		c.FS = LocalFS{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// FileConfig is the on-disk configuration consumed by the docload CLI.
type FileConfig struct {
	Loader Config        `yaml:"loader"`
	Raster raster.Config `yaml:"raster"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
