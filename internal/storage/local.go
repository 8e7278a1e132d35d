package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files under Dir and serves them from BaseURL (e.g. /media).
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if !filepath.IsAbs(dir) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Save(_ context.Context, key, _ string, data []byte) (string, error) {
	full, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return l.BaseURL + "/" + filepath.ToSlash(key), nil
}

func (l *Local) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, l.BaseURL+"/") {
		return ErrNotManaged
	}
	full, err := l.path(strings.TrimPrefix(url, l.BaseURL+"/"))
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Resolve maps a request path below BaseURL to a file inside Dir. It rejects
// traversal, absolute paths and null bytes.
func (l *Local) Resolve(rel string) (string, bool) {
	lower := strings.ToLower(rel)
	if strings.Contains(lower, "..") || strings.Contains(lower, "%2e") || strings.Contains(lower, "\x00") {
		return "", false
	}
	full, err := l.path(rel)
	if err != nil {
		return "", false
	}
	return full, true
}

func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.Dir, clean), nil
}
