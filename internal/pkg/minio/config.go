package minio

import (
	"errors"
	"time"
)

// BucketLookupType represents the type of bucket lookup
type BucketLookupType string

const (
	// BucketLookupAuto automatically determines the bucket lookup type
	BucketLookupAuto BucketLookupType = "auto"
	// BucketLookupDNS uses DNS-style bucket lookup (bucket.endpoint)
	BucketLookupDNS BucketLookupType = "dns"
	// BucketLookupPath uses path-style bucket lookup (endpoint/bucket)
	BucketLookupPath BucketLookupType = "path"
)

// Config represents the configuration for the podcast archive store
type Config struct {
	// Enabled turns archiving on; a disabled store is never dialed
	Enabled bool `mapstructure:"enabled"`

	// Endpoint is the S3-compatible object storage endpoint
	// Examples: "play.min.io", "localhost:9000"
	Endpoint string `mapstructure:"endpoint"`

	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`

	// Region is the region of the object storage (optional)
	Region string `mapstructure:"region"`

	// UseSSL determines whether to use HTTPS (true) or HTTP (false)
	UseSSL bool `mapstructure:"use_ssl"`

	// BucketLookup specifies the bucket lookup type
	// Default: BucketLookupAuto
	BucketLookup BucketLookupType `mapstructure:"bucket_lookup"`

	// Bucket receives archived podcasts and is created on start-up when missing
	Bucket string `mapstructure:"bucket"`

	// Prefix is prepended to every object key
	Prefix string `mapstructure:"prefix"`

	// PresignExpiry bounds the lifetime of download URLs
	// Default: 24 hours
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`

	// RequestTimeout is the timeout for individual requests
	// Default: 30 seconds
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// maxPresignExpiry is the S3 limit for presigned URLs
const maxPresignExpiry = 7 * 24 * time.Hour

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("minio: endpoint is required")
	}

	if c.AccessKeyID == "" {
		return errors.New("minio: access key ID is required")
	}

	if c.SecretAccessKey == "" {
		return errors.New("minio: secret access key is required")
	}

	if err := ValidateBucketName(c.Bucket); err != nil {
		return err
	}

	if c.BucketLookup != "" &&
		c.BucketLookup != BucketLookupAuto &&
		c.BucketLookup != BucketLookupDNS &&
		c.BucketLookup != BucketLookupPath {
		return errors.New("minio: invalid bucket lookup type")
	}

	if c.PresignExpiry > maxPresignExpiry {
		return errors.New("minio: presign expiry cannot exceed 7 days")
	}

	return nil
}

// SetDefaults sets default values for unspecified configuration fields
func (c *Config) SetDefaults() {
	if c.BucketLookup == "" {
		c.BucketLookup = BucketLookupAuto
	}

	if c.PresignExpiry <= 0 {
		c.PresignExpiry = 24 * time.Hour
	}

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		UseSSL:         true,
		BucketLookup:   BucketLookupAuto,
		Bucket:         "knowcast-podcasts",
		Prefix:         "podcasts",
		PresignExpiry:  24 * time.Hour,
		RequestTimeout: 30 * time.Second,
	}
}
