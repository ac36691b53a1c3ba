package minio

import (
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// UploadInfo describes an uploaded object
type UploadInfo struct {
	Bucket string
	Key    string
	ETag   string
	Size   int64
}

// FPutObject uploads a local file under objectName in the archive bucket
func (c *Client) FPutObject(ctx context.Context, objectName, filePath, contentType string) (UploadInfo, error) {
	if err := c.checkClosed(); err != nil {
		return UploadInfo{}, err
	}

	if err := ValidateObjectName(objectName); err != nil {
		return UploadInfo{}, WrapError("FPutObject", err, c.config.Bucket, objectName)
	}

	if filePath == "" {
		return UploadInfo{}, WrapErrorWithMessage("FPutObject", ErrInvalidArgument, "file path is required")
	}

	if contentType == "" {
		contentType = DetectContentType(filePath)
	}

	info, err := c.client.FPutObject(ctx, c.config.Bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return UploadInfo{}, WrapError("FPutObject", err, c.config.Bucket, objectName)
	}

	c.logger.Info("file uploaded successfully",
		zap.String("bucket", c.config.Bucket),
		zap.String("object", objectName),
		zap.Int64("size", info.Size),
	)

	return UploadInfo{
		Bucket: info.Bucket,
		Key:    info.Key,
		ETag:   info.ETag,
		Size:   info.Size,
	}, nil
}

// PresignedGetObject generates a download URL; a non-positive expiry uses the configured one
func (c *Client) PresignedGetObject(ctx context.Context, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	if err := ValidateObjectName(objectName); err != nil {
		return nil, WrapError("PresignedGetObject", err, c.config.Bucket, objectName)
	}

	if expiry <= 0 {
		expiry = c.config.PresignExpiry
	}

	u, err := c.client.PresignedGetObject(ctx, c.config.Bucket, objectName, expiry, reqParams)
	if err != nil {
		return nil, WrapError("PresignedGetObject", err, c.config.Bucket, objectName)
	}
	return u, nil
}
