// Package config handles configuration settings for the application.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds the configuration settings for the application.
type Config struct {
	Addr                 string        `koanf:"addr" validate:"required,ip_port"`
	DataDir              string        `koanf:"data_dir" validate:"required,custom_path"`
	MaximumSize          ByteSize      `koanf:"maximum_size" validate:"required"`
	InMemoryTTL          time.Duration `koanf:"in_memory_ttl" validate:"required,gt=0"`
	CacheCleanupInterval time.Duration `koanf:"cache_cleanup_interval" validate:"required,gt=0"`
	OnDiskTTL            time.Duration `koanf:"on_disk_ttl" validate:"required,gt=0"`
	FileCleanupInterval  time.Duration `koanf:"file_cleanup_interval" validate:"required,gt=0"`
	SignalBufferSize     int           `koanf:"signal_buffer_size" validate:"required,gt=0"`
	MetricsAddr          string        `koanf:"metrics_addr" validate:"omitempty,ip_port"`
	IPAllowlist          []string      `koanf:"ip_allowlist"`
}

// DefaultAppConfig provides the default app configuration values.
var DefaultAppConfig = Config{
	Addr:                 ":8080",
	DataDir:              "/data",
	MaximumSize:          ByteSize(200_000_000), // 200 MB resident budget
	InMemoryTTL:          30 * time.Second,
	CacheCleanupInterval: 5 * time.Second,
	OnDiskTTL:            60 * time.Second,
	FileCleanupInterval:  10 * time.Second,
	SignalBufferSize:     1000,
	MetricsAddr:          ":9090",
	IPAllowlist:          nil,
}

// defaultLoader loads default configuration values into the provided Koanf
// instance using the structs provider and the DefaultAppConfig struct.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DefaultAppConfig, "koanf"), nil)
}

// envLoader loads environment variables with the prefix "FILECACHE_",
// transforming keys to lowercase and splitting comma-separated values into
// slices (used by ip_allowlist). Can be swapped in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{Prefix: "FILECACHE_", TransformFunc: func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, "FILECACHE_"))
		if strings.Contains(value, ",") {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, strings.TrimSpace(value)
	}}), nil)
}

// validIPPort validates whether the provided field value is a valid IP
// address and port combination, parseable by net.Listen().
// Examples: ":8080", "127.0.0.1:8080"
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	ip, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}
	if ip != "" && net.ParseIP(ip) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0 && portNum < 65536
}

// validDirNotExists checks that the provided value looks like a directory
// path, without requiring it to exist yet. Disallows empty paths, ".", the
// root directory, and any upward traversal.
func validDirNotExists(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}
	cleaned := filepath.Clean(raw)
	if cleaned == "." || cleaned == string(os.PathSeparator) {
		return false
	}
	for _, part := range strings.Split(cleaned, string(os.PathSeparator)) {
		if part == ".." {
			return false
		}
	}
	return true
}

// registerValidators registers custom validation functions with v.
var registerValidators = func(v *validator.Validate) error {
	if err := v.RegisterValidation("ip_port", validIPPort); err != nil {
		return err
	}
	return v.RegisterValidation("custom_path", validDirNotExists)
}

// Load loads the configuration by applying default values and overriding
// them with environment variables, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, err
	}
	if err := envLoader(k); err != nil {
		return nil, err
	}

	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				StringToByteSize(),
			),
		},
	})
	if err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidators(validate); err != nil {
		return nil, err
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SQLiteDSN returns a hardened SQLite DSN for the metadata database, derived
// from DataDir. WAL mode, foreign keys, busy timeout, and FULL synchronous
// are enforced.
func (c *Config) SQLiteDSN() string {
	dbPath := filepath.Join(c.DataDir, "filecached.db")
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_synchronous=FULL", dbPath)
}

// BlobDir returns the directory blob files are written to, a subdirectory
// of DataDir so the sqlite file and blob files never collide.
func (c *Config) BlobDir() string {
	return filepath.Join(c.DataDir, "blobs")
}
