package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/archesproject/arches-rdm-example-project/internal/env"
)

const (
	// FileSystemBackend stores uploads on the local filesystem.
	FileSystemBackend = "django.core.files.storage.FileSystemStorage"
	// S3Backend stores uploads in an S3 bucket.
	S3Backend = "storages.backends.s3.S3Storage"
	// StaticFilesBackend serves collected static files.
	StaticFilesBackend = "django.contrib.staticfiles.storage.StaticFilesStorage"
)

// Option keys populated for the S3 backend.
const (
	OptionBucketName       = "bucket_name"
	OptionFileOverwrite    = "file_overwrite"
	OptionSignatureVersion = "signature_version"
	OptionRegion           = "region"
	OptionMaxMemorySize    = "max_memory_size"
)

var (
	// ErrMemoryUnavailable indicates the memory source returned no usable figure.
	ErrMemoryUnavailable = errors.New("available memory could not be determined")
)

// Options are backend-specific storage parameters. They are empty unless the
// selected backend needs them.
type Options map[string]any

// Selection is the storage backend chosen for this process.
type Selection struct {
	Backend string
	Options Options
}

// MemorySource reports the bytes of memory currently available to the process.
type MemorySource func(ctx context.Context) (uint64, error)

// SystemMemory is the default MemorySource.
func SystemMemory(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("read virtual memory: %w", err)
	}
	return vm.Available, nil
}

// Select reads STORAGEBACKEND and, for S3, assembles its options. Only
// S3BUCKETNAME is required; memory is measured only when S3MAXMEMORY is unset.
func Select(ctx context.Context, reader *env.Reader, measure MemorySource) (Selection, error) {
	backend := reader.Optional("STORAGEBACKEND", FileSystemBackend)
	if backend != S3Backend {
		return Selection{Backend: backend, Options: Options{}}, nil
	}

	if measure == nil {
		measure = SystemMemory
	}

	bucket, err := reader.Require("S3BUCKETNAME")
	if err != nil {
		return Selection{}, err
	}
	overwrite := reader.OptionalFlag("S3FILEOVERWRITE", true)
	signature := reader.Optional("S3SIGNATUREVERSION", "s3v4")
	region := reader.Optional("S3REGION", "us-west-1")
	maxMemory, err := reader.OptionalInt64("S3MAXMEMORY", func() (int64, error) {
		return halfAvailableMemory(ctx, measure)
	})
	if err != nil {
		return Selection{}, err
	}

	return Selection{
		Backend: backend,
		Options: Options{
			OptionBucketName:       bucket,
			OptionFileOverwrite:    overwrite,
			OptionSignatureVersion: signature,
			OptionRegion:           region,
			OptionMaxMemorySize:    maxMemory,
		},
	}, nil
}

// Storages builds the STORAGES mapping for a selection.
func Storages(sel Selection) map[string]Backend {
	return map[string]Backend{
		"default": {
			Backend: sel.Backend,
			Options: sel.Options,
		},
		"staticfiles": {
			Backend: StaticFilesBackend,
		},
	}
}

// Backend is one entry of the STORAGES mapping.
type Backend struct {
	Backend string  `yaml:"BACKEND" json:"BACKEND"`
	Options Options `yaml:"OPTIONS" json:"OPTIONS"`
}

// halfAvailableMemory sizes the in-memory upload buffer at half of what is free.
func halfAvailableMemory(ctx context.Context, measure MemorySource) (int64, error) {
	available, err := measure(ctx)
	if err != nil {
		return 0, err
	}
	if available == 0 {
		return 0, ErrMemoryUnavailable
	}
	return int64(available / 2), nil
}
