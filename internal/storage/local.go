package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	UploadsBaseDir = "./uploads"
	StaticURLBase  = "/static/uploads"
)

// LocalStore writes blobs below baseDir; they are served under staticBase.
type LocalStore struct {
	baseDir    string
	staticBase string
}

func NewLocalStore(baseDir, staticBase string) *LocalStore {
	if baseDir == "" {
		baseDir = UploadsBaseDir
	}
	if staticBase == "" {
		staticBase = StaticURLBase
	}
	return &LocalStore{baseDir: baseDir, staticBase: strings.TrimRight(staticBase, "/")}
}

func (s *LocalStore) BaseDir() string { return s.baseDir }

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}

func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	absPath, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, body); err != nil {
		dst.Close()
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.staticBase + "/" + strings.TrimLeft(filepath.ToSlash(filepath.Clean(filepath.FromSlash(key))), "/"), nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	absPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
