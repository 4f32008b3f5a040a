package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/htsget-io/htsget-server/idresolver"
)

const ConfigVersion = 1

// URI is a loosely-typed location string; which storage backend
// interprets it depends on the scheme prefix it carries.
type URI string

func (u URI) String() string { return string(u) }

// IsZero returns true if the URI is empty.
func (u URI) IsZero() bool { return u == "" }

// IsLocal returns true if the URI addresses the local filesystem.
func (u URI) IsLocal() bool {
	return (len(u) > 7 && u[:7] == "file://") || (len(u) > 0 && u[0] == '/')
}

// IsRemoteWeb returns true if the URI is a plain HTTP(S) URI.
func (u URI) IsRemoteWeb() bool {
	return (len(u) > 7 && u[:7] == "http://") || (len(u) > 8 && u[:8] == "https://")
}

// IsS3 returns true if the URI is an s3:// URI.
func (u URI) IsS3() bool {
	return len(u) > 5 && u[:5] == "s3://"
}

// IsValid returns true if the URI is non-empty and recognized by one of
// the backends this server knows how to construct.
func (u URI) IsValid() bool {
	if u.IsZero() {
		return false
	}
	return u.IsLocal() || u.IsRemoteWeb() || u.IsS3()
}

// LoadConfig reads and validates a JSON or YAML config file.
func LoadConfig(configFilepath string) (*Config, error) {
	var config Config
	switch {
	case isJSONFile(configFilepath):
		if err := loadFromJSON(configFilepath, &config); err != nil {
			return nil, err
		}
	case isYAMLFile(configFilepath):
		if err := loadFromYAML(configFilepath, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("config file %q must be JSON or YAML", configFilepath)
	}
	config.originalFilepath = configFilepath
	sum, err := hashFileSha256(configFilepath)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %s", configFilepath, err.Error())
	}
	config.hashOfConfigFile = sum
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config file %q: %w", configFilepath, err)
	}
	return &config, nil
}

func hashFileSha256(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Config is the server's top-level configuration: which storage backend
// to read files from, how to turn a client id into a storage key, and
// where the companion data server listens for local-storage byte-range
// requests.
type Config struct {
	originalFilepath string
	hashOfConfigFile string

	Version *uint64 `json:"version" yaml:"version"`

	Storage struct {
		Local *struct {
			Root              URI    `json:"root" yaml:"root"`
			DataServerBaseURL string `json:"data_server_base_url" yaml:"data_server_base_url"`
			UseMmap           bool   `json:"use_mmap" yaml:"use_mmap"`
		} `json:"local" yaml:"local"`
		S3 *struct {
			Bucket       string `json:"bucket" yaml:"bucket"`
			Region       string `json:"region" yaml:"region"`
			URLExpirySec int64  `json:"url_expiry_seconds" yaml:"url_expiry_seconds"`
		} `json:"s3" yaml:"s3"`
		URL *struct {
			BaseURL string `json:"base_url" yaml:"base_url"`
		} `json:"url" yaml:"url"`
	} `json:"storage" yaml:"storage"`

	Resolvers []idresolver.Rule `json:"resolvers" yaml:"resolvers"`

	DataServer struct {
		ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	} `json:"data_server" yaml:"data_server"`

	HTTP struct {
		ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	} `json:"http" yaml:"http"`
}

func (c *Config) ConfigFilepath() string { return c.originalFilepath }
func (c *Config) HashOfConfigFile() string { return c.hashOfConfigFile }

func (c *Config) IsSameHash(other *Config) bool {
	return c.hashOfConfigFile == other.hashOfConfigFile
}

func (c *Config) IsSameHashAsFile(filepath string) bool {
	sum, err := hashFileSha256(filepath)
	if err != nil {
		return false
	}
	return c.hashOfConfigFile == sum
}

// StorageKind identifies which single backend a Config selects.
type StorageKind int

const (
	StorageKindNone StorageKind = iota
	StorageKindLocal
	StorageKindS3
	StorageKindURL
)

func (c *Config) StorageKind() StorageKind {
	switch {
	case c.Storage.Local != nil:
		return StorageKindLocal
	case c.Storage.S3 != nil:
		return StorageKindS3
	case c.Storage.URL != nil:
		return StorageKindURL
	default:
		return StorageKindNone
	}
}

// Validate checks the config for internal consistency. Exactly one
// storage backend must be configured, and at least one id resolver rule
// must be present so every request can be mapped to a storage key.
func (c *Config) Validate() error {
	if c.Version == nil {
		return fmt.Errorf("version must be set")
	}
	if *c.Version != ConfigVersion {
		return fmt.Errorf("version must be %d", ConfigVersion)
	}

	configured := 0
	if c.Storage.Local != nil {
		configured++
		if c.Storage.Local.Root.IsZero() {
			return fmt.Errorf("storage.local.root must be set")
		}
	}
	if c.Storage.S3 != nil {
		configured++
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket must be set")
		}
	}
	if c.Storage.URL != nil {
		configured++
		if c.Storage.URL.BaseURL == "" {
			return fmt.Errorf("storage.url.base_url must be set")
		}
	}
	if configured == 0 {
		return fmt.Errorf("exactly one of storage.local, storage.s3, storage.url must be set")
	}
	if configured > 1 {
		return fmt.Errorf("only one of storage.local, storage.s3, storage.url may be set")
	}

	if len(c.Resolvers) == 0 {
		return fmt.Errorf("resolvers must contain at least one rule")
	}
	for i, rule := range c.Resolvers {
		if rule.Pattern == "" {
			return fmt.Errorf("resolvers[%d].pattern must be set", i)
		}
	}

	if c.HTTP.ListenAddr == "" {
		return fmt.Errorf("http.listen_addr must be set")
	}
	return nil
}
