package minio

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

var (
	ErrInvalidArgument     = errors.New("minio: invalid argument")
	ErrInvalidBucketName   = errors.New("minio: invalid bucket name")
	ErrInvalidObjectName   = errors.New("minio: invalid object name")
	ErrConnectionFailed    = errors.New("minio: connection failed")
	ErrBucketAlreadyExists = errors.New("minio: bucket already exists")
)

// Error represents a MinIO error with additional context
type Error struct {
	Op      string
	Err     error
	Bucket  string
	Object  string
	Message string
}

// Error returns the error message
func (e *Error) Error() string {
	switch {
	case e.Bucket != "" && e.Object != "":
		return fmt.Sprintf("minio: %s failed for bucket=%s, object=%s: %v", e.Op, e.Bucket, e.Object, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("minio: %s failed for bucket=%s: %v", e.Op, e.Bucket, e.Err)
	case e.Message != "":
		return fmt.Sprintf("minio: %s failed: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("minio: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error is a "not found" error
func IsNotFound(err error) bool {
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		return minioErr.Code == "NoSuchBucket" || minioErr.Code == "NoSuchKey"
	}
	return false
}

// IsBucketAlreadyExists checks if the error is a "bucket already exists" error
func IsBucketAlreadyExists(err error) bool {
	if errors.Is(err, ErrBucketAlreadyExists) {
		return true
	}
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		return minioErr.Code == "BucketAlreadyExists" || minioErr.Code == "BucketAlreadyOwnedByYou"
	}
	return false
}

// WrapError wraps an error with operation context
func WrapError(op string, err error, bucket, object string) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err, Bucket: bucket, Object: object}
}

// WrapErrorWithMessage wraps an error with operation context and a message
func WrapErrorWithMessage(op string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err, Message: message}
}
