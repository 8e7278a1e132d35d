// Package storage keeps uploaded files (gift, album, story and PIX QR
// images) on local disk or in an S3 bucket.
package storage

import (
	"context"
	"errors"
)

var ErrNotManaged = errors.New("url not managed by this storage")

type Storage interface {
	// Save writes data under key and returns the URL clients should use.
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Delete removes the object behind a URL previously returned by Save.
	Delete(ctx context.Context, url string) error
}
