package data

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lk2023060901/knowcast-backend/internal/pkg/minio"
)

const audioContentType = "audio/mpeg"

// objectStore is the subset of the MinIO client used for archiving
type objectStore interface {
	FPutObject(ctx context.Context, objectName, filePath, contentType string) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, objectName string, expiry time.Duration, reqParams map[string][]string) (string, error)
}

// Archiver uploads finished podcasts to object storage
type Archiver struct {
	store  objectStore
	prefix string
	now    func() time.Time
}

// NewArchiver archives into the client's bucket under its configured prefix
func NewArchiver(client *minio.Client) *Archiver {
	return &Archiver{
		store:  minioStore{client},
		prefix: client.Config().Prefix,
		now:    time.Now,
	}
}

// Archive uploads localPath and returns a presigned download URL
func (a *Archiver) Archive(ctx context.Context, localPath string) (string, error) {
	key := a.ObjectKey(localPath)
	if _, err := a.store.FPutObject(ctx, key, localPath, audioContentType); err != nil {
		return "", err
	}

	params := map[string][]string{
		"response-content-disposition": {ContentDisposition(filepath.Base(localPath))},
	}
	return a.store.PresignedGetObject(ctx, key, 0, params)
}

// ObjectKey is <prefix>/<yyyy>/<mm>/<dd>/<uuid>-<file name>
func (a *Archiver) ObjectKey(localPath string) string {
	return minio.ObjectKey(a.prefix, a.now().UTC().Format("2006/01/02"), uuid.NewString()+"-"+filepath.Base(localPath))
}

type minioStore struct {
	client *minio.Client
}

func (m minioStore) FPutObject(ctx context.Context, objectName, filePath, contentType string) (minio.UploadInfo, error) {
	return m.client.FPutObject(ctx, objectName, filePath, contentType)
}

func (m minioStore) PresignedGetObject(ctx context.Context, objectName string, expiry time.Duration, reqParams map[string][]string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, objectName, expiry, reqParams)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
