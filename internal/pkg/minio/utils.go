package minio

import (
	"fmt"
	"mime"
	"net"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// bucketNameRegex validates bucket names according to AWS S3 rules
var bucketNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]{1,61}[a-z0-9]$`)

// ValidateBucketName validates a bucket name according to AWS S3 naming rules
func ValidateBucketName(bucketName string) error {
	if bucketName == "" {
		return fmt.Errorf("%w: bucket name cannot be empty", ErrInvalidBucketName)
	}
	if !bucketNameRegex.MatchString(bucketName) {
		return fmt.Errorf("%w: %q must be 3-63 lowercase letters, numbers or hyphens", ErrInvalidBucketName, bucketName)
	}
	if strings.Contains(bucketName, "--") {
		return fmt.Errorf("%w: %q contains consecutive hyphens", ErrInvalidBucketName, bucketName)
	}
	if net.ParseIP(bucketName) != nil {
		return fmt.Errorf("%w: %q is formatted as an IP address", ErrInvalidBucketName, bucketName)
	}
	return nil
}

// ValidateObjectName validates an object name
func ValidateObjectName(objectName string) error {
	switch {
	case objectName == "":
		return fmt.Errorf("%w: object name cannot be empty", ErrInvalidObjectName)
	case len(objectName) > 1024:
		return fmt.Errorf("%w: object name cannot exceed 1024 characters", ErrInvalidObjectName)
	case strings.Contains(objectName, "\x00"):
		return fmt.Errorf("%w: object name cannot contain null bytes", ErrInvalidObjectName)
	}
	return nil
}

// DetectContentType detects the content type of a file based on its extension
func DetectContentType(filePath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filePath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// SanitizeObjectName removes null bytes and redundant slashes
func SanitizeObjectName(objectName string) string {
	objectName = strings.ReplaceAll(objectName, "\x00", "")
	objectName = strings.Trim(objectName, "/")
	for strings.Contains(objectName, "//") {
		objectName = strings.ReplaceAll(objectName, "//", "/")
	}
	return objectName
}

// ObjectKey joins prefix and the given key parts into a sanitized object name
func ObjectKey(prefix string, parts ...string) string {
	all := append([]string{prefix}, parts...)
	return SanitizeObjectName(path.Join(all...))
}
