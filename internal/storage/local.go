package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type LocalStore struct {
	base     string
	maxBytes int64
}

func NewLocalStore(base string, maxBytes int64) (*LocalStore, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve local storage base: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage base: %w", err)
	}
	return &LocalStore{base: abs, maxBytes: maxBytes}, nil
}

func (s *LocalStore) Driver() string { return "local" }

func (s *LocalStore) Put(_ context.Context, data []byte, meta PutMeta) (PutResult, error) {
	if err := checkSize(data, s.maxBytes, meta.OriginalName); err != nil {
		return PutResult{}, err
	}

	key := buildKey(meta)
	fullPath := filepath.Join(s.base, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return PutResult{}, fmt.Errorf("create storage directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return PutResult{}, fmt.Errorf("write file: %w", err)
	}

	return PutResult{Key: key, ChecksumSHA256: checksum(data)}, nil
}

func (s *LocalStore) Delete(_ context.Context, _ string, key string) error {
	err := os.Remove(filepath.Join(s.base, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) LocalPath(key string) (string, error) {
	return filepath.Join(s.base, filepath.FromSlash(key)), nil
}

func (s *LocalStore) PresignGet(_ context.Context, _ string, _ string, _ time.Duration) (string, error) {
	return "", fmt.Errorf("presigned URLs are not supported by the local driver")
}
