package minio

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = "localhost:9000"
	cfg.AccessKeyID = "minioadmin"
	cfg.SecretAccessKey = "minioadmin"
	cfg.UseSSL = false
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no endpoint", mutate: func(c *Config) { c.Endpoint = "" }, wantErr: true},
		{name: "no access key", mutate: func(c *Config) { c.AccessKeyID = "" }, wantErr: true},
		{name: "no secret", mutate: func(c *Config) { c.SecretAccessKey = "" }, wantErr: true},
		{name: "bad bucket", mutate: func(c *Config) { c.Bucket = "Bad_Bucket" }, wantErr: true},
		{name: "bad lookup", mutate: func(c *Config) { c.BucketLookup = "virtual" }, wantErr: true},
		{name: "long expiry", mutate: func(c *Config) { c.PresignExpiry = 8 * 24 * time.Hour }, wantErr: true},
		{name: "path lookup", mutate: func(c *Config) { c.BucketLookup = BucketLookupPath }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	assert.Equal(t, BucketLookupAuto, cfg.BucketLookup)
	assert.Equal(t, 24*time.Hour, cfg.PresignExpiry)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil, logger.Nop())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	bad := validConfig()
	bad.Endpoint = ""
	_, err = NewClient(bad, logger.Nop())
	assert.Error(t, err)

	c, err := NewClient(validConfig(), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "knowcast-podcasts", c.Bucket())
	assert.False(t, c.IsClosed())

	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
	_, err = c.FPutObject(context.Background(), "a.mp3", "/tmp/a.mp3", "")
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestValidateBucketName(t *testing.T) {
	for _, name := range []string{"knowcast-podcasts", "abc", "a1-b2"} {
		assert.NoError(t, ValidateBucketName(name), name)
	}
	for _, name := range []string{"", "ab", "UPPER", "a--b", "-abc", "192.168.1.1", strings.Repeat("a", 64)} {
		assert.ErrorIs(t, ValidateBucketName(name), ErrInvalidBucketName, name)
	}
}

func TestValidateObjectName(t *testing.T) {
	assert.NoError(t, ValidateObjectName("podcasts/2026/a.mp3"))
	assert.ErrorIs(t, ValidateObjectName(""), ErrInvalidObjectName)
	assert.ErrorIs(t, ValidateObjectName("a\x00b"), ErrInvalidObjectName)
	assert.ErrorIs(t, ValidateObjectName(strings.Repeat("a", 1025)), ErrInvalidObjectName)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "podcasts/2026/a.mp3", ObjectKey("podcasts", "2026", "a.mp3"))
	assert.Equal(t, "a.mp3", ObjectKey("", "a.mp3"))
	assert.Equal(t, "podcasts/a.mp3", ObjectKey("/podcasts/", "/a.mp3"))
	assert.Equal(t, "a/b", SanitizeObjectName("//a//b/\x00"))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", DetectContentType("cover.png"))
	assert.Equal(t, "application/octet-stream", DetectContentType("podcast"))
}

func TestErrors(t *testing.T) {
	assert.True(t, IsBucketAlreadyExists(minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou"}))
	assert.True(t, IsBucketAlreadyExists(WrapError("MakeBucket", ErrBucketAlreadyExists, "b", "")))
	assert.False(t, IsBucketAlreadyExists(errors.New("other")))
	assert.True(t, IsNotFound(WrapError("Stat", minio.ErrorResponse{Code: "NoSuchKey"}, "b", "o")))

	err := WrapError("FPutObject", errors.New("boom"), "b", "o")
	assert.Equal(t, "minio: FPutObject failed for bucket=b, object=o: boom", err.Error())
	assert.Nil(t, WrapError("x", nil, "", ""))
}
