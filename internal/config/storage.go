package config

import (
	"fmt"
	"strings"
)

// Storage configures the disk holding staged import files and product images.
type Storage struct {
	Disk      DiskDriver `env:"STORAGE_DISK" envDefault:"local"`
	LocalRoot string     `env:"STORAGE_LOCAL_ROOT" envDefault:"media"`
	ImportDir string     `env:"STORAGE_IMPORT_DIR" envDefault:"temp_imports"`
	ImageDir  string     `env:"STORAGE_IMAGE_DIR" envDefault:"products/images"`

	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Key      string `env:"S3_KEY"`
	S3Secret   string `env:"S3_SECRET"`
	S3Endpoint string `env:"S3_ENDPOINT"`
}

// DiskDriver selects the storage backend.
type DiskDriver uint8

const (
	DiskDriverLocal DiskDriver = iota
	DiskDriverS3
)

func (d DiskDriver) String() string {
	return []string{"local", "s3"}[d]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *DiskDriver) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "local":
		*d = DiskDriverLocal
	case "s3":
		*d = DiskDriverS3
	default:
		return fmt.Errorf("unknown storage disk: %s", text)
	}
	return nil
}
