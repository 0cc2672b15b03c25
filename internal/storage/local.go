package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStorage) Save(folder, name string, data []byte) (string, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return folder + "/" + name, nil
}

func (s *LocalStorage) Delete(path string) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStorage) DeleteFolder(folder string) error {
	return os.RemoveAll(filepath.Join(s.root, filepath.FromSlash(folder)))
}

func (s *LocalStorage) URL(path string) string {
	return s.baseURL + "/" + path
}
