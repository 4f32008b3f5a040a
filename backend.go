package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/htsget-io/htsget-server/idresolver"
	"github.com/htsget-io/htsget-server/storage"
)

// buildBackend constructs the single storage.Backend a Config selects.
func buildBackend(ctx context.Context, cfg *Config) (storage.Backend, error) {
	switch cfg.StorageKind() {
	case StorageKindLocal:
		root := cfg.Storage.Local.Root.String()
		root = strings.TrimPrefix(root, "file://")
		isDir, err := isDirectory(root)
		if err != nil {
			return nil, fmt.Errorf("storage.local.root %q: %w", root, err)
		}
		if !isDir {
			return nil, fmt.Errorf("storage.local.root %q is not a directory", root)
		}
		return &storage.LocalBackend{
			Root:              root,
			DataServerBaseURL: cfg.Storage.Local.DataServerBaseURL,
			UseMmap:           cfg.Storage.Local.UseMmap,
		}, nil
	case StorageKindS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.S3.Region))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		backend := storage.NewS3Backend(s3.NewFromConfig(awsCfg), cfg.Storage.S3.Bucket)
		if cfg.Storage.S3.URLExpirySec > 0 {
			backend.Expiry = time.Duration(cfg.Storage.S3.URLExpirySec) * time.Second
		}
		return backend, nil
	case StorageKindURL:
		base := cfg.Storage.URL.BaseURL
		return storage.NewURLBackend(func(key string) (string, error) {
			return strings.TrimRight(base, "/") + "/" + key, nil
		}), nil
	default:
		return nil, fmt.Errorf("no storage backend configured")
	}
}

// buildResolver compiles the configured id-resolution rules.
func buildResolver(cfg *Config) (*idresolver.Resolver, error) {
	return idresolver.NewResolver(cfg.Resolvers)
}
