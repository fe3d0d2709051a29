// Package storage provides Google Cloud Storage access for raw
// message archival.
package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

const rawMessageContentType = "message/rfc822"

// RawMessageObject returns the object name for an archived inbound
// message.
func RawMessageObject(importID string) string {
	return fmt.Sprintf("raw/%s.eml", importID)
}

// StorageAdapter reads and writes objects in a single GCS bucket.
type StorageAdapter struct {
	Client *storage.Client
	Bucket string
}

func (a *StorageAdapter) Write(ctx context.Context, object string, data []byte) error {
	w := a.Client.Bucket(a.Bucket).Object(object).NewWriter(ctx)
	w.ContentType = rawMessageContentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object %s: %w", object, err)
	}
	return nil
}

func (a *StorageAdapter) Read(ctx context.Context, object string) ([]byte, error) {
	r, err := a.Client.Bucket(a.Bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", object, err)
	}
	return data, nil
}
