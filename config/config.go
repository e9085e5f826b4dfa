// Package config loads service configuration from defaults, an optional YAML
// file, and RESUMEPDF_* environment overrides, in that order.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "90s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// FilesDir is the directory generated PDFs are stored in.
	FilesDir string `yaml:"files_dir"`
	// StoreTTL bounds how long a stored PDF is served without reconversion.
	StoreTTL Duration `yaml:"store_ttl"`
	// Upstream is the base URL of the resume renderer.
	Upstream string `yaml:"upstream"`
	// HTTPTimeout applies to each upstream request.
	HTTPTimeout Duration `yaml:"http_timeout"`
	// Retries is the total number of tries per upstream request.
	Retries int `yaml:"retries"`
	// RetryBackoff is the pause between retries.
	RetryBackoff Duration `yaml:"retry_backoff"`
	// ResponseCacheTTL bounds the in-memory upstream response cache.
	ResponseCacheTTL Duration `yaml:"response_cache_ttl"`
	// ImageSize is the longest-edge pixel size requested upstream.
	ImageSize int `yaml:"image_size"`
	// ImageExtension is the page image format (png or jpeg).
	ImageExtension string `yaml:"image_extension"`
	// Languages are OCR traineddata hints.
	Languages []string `yaml:"languages"`
	// MinConfidence drops OCR words below this confidence from the text layer.
	MinConfidence float64 `yaml:"min_confidence"`
	// Concurrency bounds parallel page downloads.
	Concurrency int `yaml:"concurrency"`
	// JobRetention is how long finished async jobs stay queryable.
	JobRetention Duration `yaml:"job_retention"`
	// ShutdownGrace is the drain timeout on SIGINT/SIGTERM.
	ShutdownGrace Duration `yaml:"shutdown_grace"`
	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns a configuration that works with no file present, matching
// the container contract (port 8000, /files).
func Default() Config {
	return Config{
		Listen:           ":8000",
		FilesDir:         "/files",
		StoreTTL:         Duration(15 * time.Minute),
		Upstream:         "https://ssr.resume.tools",
		HTTPTimeout:      Duration(30 * time.Second),
		Retries:          3,
		RetryBackoff:     Duration(500 * time.Millisecond),
		ResponseCacheTTL: Duration(5 * time.Minute),
		ImageSize:        1800,
		ImageExtension:   "png",
		Languages:        []string{"eng"},
		MinConfidence:    0,
		Concurrency:      4,
		JobRetention:     Duration(30 * time.Minute),
		ShutdownGrace:    Duration(10 * time.Second),
		LogLevel:         "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parsing config %s", path)
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setDuration := func(key string, dst *Duration) {
		if v := getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = Duration(d)
			}
		}
	}
	setString("RESUMEPDF_LISTEN", &c.Listen)
	setString("RESUMEPDF_FILES_DIR", &c.FilesDir)
	setDuration("RESUMEPDF_STORE_TTL", &c.StoreTTL)
	setString("RESUMEPDF_UPSTREAM", &c.Upstream)
	setDuration("RESUMEPDF_HTTP_TIMEOUT", &c.HTTPTimeout)
	setInt("RESUMEPDF_RETRIES", &c.Retries)
	setDuration("RESUMEPDF_RETRY_BACKOFF", &c.RetryBackoff)
	setDuration("RESUMEPDF_RESPONSE_CACHE_TTL", &c.ResponseCacheTTL)
	setInt("RESUMEPDF_IMAGE_SIZE", &c.ImageSize)
	setString("RESUMEPDF_IMAGE_EXTENSION", &c.ImageExtension)
	if v := getenv("RESUMEPDF_LANGUAGES"); v != "" {
		c.Languages = strings.Split(v, ",")
	}
	if v := getenv("RESUMEPDF_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinConfidence = f
		}
	}
	setInt("RESUMEPDF_CONCURRENCY", &c.Concurrency)
	setDuration("RESUMEPDF_JOB_RETENTION", &c.JobRetention)
	setDuration("RESUMEPDF_SHUTDOWN_GRACE", &c.ShutdownGrace)
	setString("RESUMEPDF_LOG_LEVEL", &c.LogLevel)
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address must not be empty")
	}
	if c.FilesDir == "" {
		return errors.New("files_dir must not be empty")
	}
	if c.Upstream == "" {
		return errors.New("upstream must not be empty")
	}
	switch c.ImageExtension {
	case "png", "jpeg", "jpg":
	default:
		return errors.Errorf("unsupported image_extension %q", c.ImageExtension)
	}
	if c.ImageSize <= 0 {
		return errors.New("image_size must be positive")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.New("min_confidence must be within [0,1]")
	}
	return nil
}
