package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInputPath  = "health_data.csv"
	DefaultOutputPath = "output/analysis_report.txt"

	EnvStorageDSN       = "HEALTHREPORT_STORAGE_DSN"
	EnvArchiveAccessKey = "HEALTHREPORT_ARCHIVE_ACCESS_KEY"
	EnvArchiveSecretKey = "HEALTHREPORT_ARCHIVE_SECRET_KEY"
)

type Config struct {
	LogLevel string        `json:"log_level" yaml:"log_level"`
	Input    InputConfig   `json:"input" yaml:"input"`
	Output   OutputConfig  `json:"output" yaml:"output"`
	Storage  StorageConfig `json:"storage" yaml:"storage"`
	Metrics  MetricsConfig `json:"metrics" yaml:"metrics"`
	Publish  PublishConfig `json:"publish" yaml:"publish"`
	Archive  ArchiveConfig `json:"archive" yaml:"archive"`
	Sinks    SinksConfig   `json:"sinks" yaml:"sinks"`
}

type InputConfig struct {
	Path string `json:"path" yaml:"path"`
}

type OutputConfig struct {
	Path      string `json:"path" yaml:"path"`
	CreateDir bool   `json:"create_dir" yaml:"create_dir"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type MetricsConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	TextfilePath string `json:"textfile_path" yaml:"textfile_path"`
}

type PublishConfig struct {
	Kafka KafkaConfig `json:"kafka" yaml:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

type ArchiveConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	Prefix    string `json:"prefix" yaml:"prefix"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
}

type SinksConfig struct {
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// UnmarshalJSON accepts the timeout as a duration string ("10s") like the
// YAML form, or as integer nanoseconds.
func (s *SinksConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timeout json.RawMessage `json:"timeout"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Timeout) == 0 || string(raw.Timeout) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(raw.Timeout, &str); err == nil {
		d, err := time.ParseDuration(str)
		if err != nil {
			return fmt.Errorf("sinks.timeout: %w", err)
		}
		s.Timeout = d
		return nil
	}
	var ns int64
	if err := json.Unmarshal(raw.Timeout, &ns); err != nil {
		return fmt.Errorf("sinks.timeout: %w", err)
	}
	s.Timeout = time.Duration(ns)
	return nil
}

func (s SinksConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timeout string `json:"timeout"`
	}{Timeout: s.Timeout.String()})
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Input:    InputConfig{Path: DefaultInputPath},
		Output:   OutputConfig{Path: DefaultOutputPath},
		Storage:  StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:healthreport.db?_pragma=busy_timeout(5000)"},
		Metrics:  MetricsConfig{Enabled: false, TextfilePath: "healthreport.prom"},
		Publish:  PublishConfig{Kafka: KafkaConfig{Enabled: false, Topic: "health-reports"}},
		Archive:  ArchiveConfig{Enabled: false, Prefix: "reports/"},
		Sinks:    SinksConfig{Timeout: 10 * time.Second},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode %s: %w", path, decodeErr)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault treats a missing file as "use defaults". Any other failure
// is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv loads envFile (if present) into the process environment without
// overriding variables already set, then copies secrets from the
// environment into cfg.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	if v := os.Getenv(EnvStorageDSN); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv(EnvArchiveAccessKey); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv(EnvArchiveSecretKey); v != "" {
		cfg.Archive.SecretKey = v
	}
	return nil
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Input.Path == "" {
		cfg.Input.Path = DefaultInputPath
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Sinks.Timeout <= 0 {
		cfg.Sinks.Timeout = 10 * time.Second
	}
}

func Validate(cfg *Config) error {
	if cfg.Input.Path == "" {
		return errors.New("input.path required")
	}
	if cfg.Output.Path == "" {
		return errors.New("output.path required")
	}
	if cfg.Storage.Enabled {
		switch strings.ToLower(cfg.Storage.Driver) {
		case "sqlite", "postgres", "postgresql":
		default:
			return fmt.Errorf("storage.driver %q not supported", cfg.Storage.Driver)
		}
	}
	if cfg.Metrics.Enabled && cfg.Metrics.TextfilePath == "" {
		return errors.New("metrics.textfile_path required when metrics.enabled is true")
	}
	if cfg.Publish.Kafka.Enabled {
		if len(cfg.Publish.Kafka.Brokers) == 0 || cfg.Publish.Kafka.Topic == "" {
			return errors.New("publish.kafka requires brokers, topic")
		}
	}
	if cfg.Archive.Enabled && (cfg.Archive.Endpoint == "" || cfg.Archive.Bucket == "") {
		return errors.New("archive requires endpoint, bucket")
	}
	return nil
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
