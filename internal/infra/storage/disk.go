package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/devlink-app/devlink/internal/usecase"
)

// DiskStorage is the local object-storage backend. Objects live under a
// root directory and are served by the HTTP layer under /media.
type DiskStorage struct {
	root    string
	baseURL string
}

func NewDiskStorage(root, baseURL string) (*DiskStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStorage{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root is the directory the HTTP layer serves as /media.
func (s *DiskStorage) Root() string {
	return s.root
}

func (s *DiskStorage) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	path := filepath.Join(s.root, filepath.Clean("/"+key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}

	return s.URL(key), nil
}

func (s *DiskStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Clean("/"+key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *DiskStorage) URL(key string) string {
	return s.baseURL + "/media/" + strings.TrimPrefix(key, "/")
}

var _ usecase.ObjectStorage = (*DiskStorage)(nil)
