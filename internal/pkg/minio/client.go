package minio

import (
	"context"
	"net/http"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
)

// Client wraps the MinIO client around a single archive bucket
type Client struct {
	client *minio.Client
	config *Config
	logger *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient creates a new MinIO client. No request is made until first use.
func NewClient(cfg *Config, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidArgument
	}
	if log == nil {
		log = logger.L()
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, WrapErrorWithMessage("NewClient", err, "invalid configuration")
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: cfg.RequestTimeout,
			MaxIdleConnsPerHost:   10,
		},
	}

	switch cfg.BucketLookup {
	case BucketLookupDNS:
		opts.BucketLookup = minio.BucketLookupDNS
	case BucketLookupPath:
		opts.BucketLookup = minio.BucketLookupPath
	default:
		opts.BucketLookup = minio.BucketLookupAuto
	}

	minioClient, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, WrapErrorWithMessage("NewClient", err, "failed to create minio client")
	}

	log.Info("minio client initialized successfully",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("use_ssl", cfg.UseSSL),
		zap.String("bucket_lookup", string(cfg.BucketLookup)),
	)

	return &Client{
		client: minioClient,
		config: cfg,
		logger: log,
	}, nil
}

// Bucket returns the archive bucket name
func (c *Client) Bucket() string {
	return c.config.Bucket
}

// Config returns the client configuration
func (c *Client) Config() *Config {
	return c.config
}

// EnsureBucket creates the archive bucket when it does not exist
func (c *Client) EnsureBucket(ctx context.Context) error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return WrapError("BucketExists", err, c.config.Bucket, "")
	}
	if exists {
		return nil
	}

	err = c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region})
	if err != nil && !IsBucketAlreadyExists(err) {
		return WrapError("MakeBucket", err, c.config.Bucket, "")
	}

	c.logger.Info("bucket created", zap.String("bucket", c.config.Bucket))
	return nil
}

// Close closes the client and releases resources
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.logger.Info("minio client closed")
	return nil
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) checkClosed() error {
	if c.IsClosed() {
		return WrapErrorWithMessage("checkClosed", ErrConnectionFailed, "client is closed")
	}
	return nil
}
