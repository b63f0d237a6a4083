// Package file stores each cart as <root>/<key>.json on the local disk.
package file

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/dwikikusuma/storefront/internal/cart/app"
)

const DefaultRoot = "./cartdata"

type Storage struct {
	root string
}

// New returns a storage rooted at root, creating the directory if needed.
func New(root string) (*Storage, error) {
	if root == "" {
		root = DefaultRoot
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cart root %s", root)
	}
	return &Storage{root: root}, nil
}

// fileName maps a cart key to a flat file name. The key is query-escaped,
// which is reversible and leaves no separators, so distinct keys never share
// a file and no key can leave root.
func fileName(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("empty cart key")
	}
	name := url.QueryEscape(key)
	if strings.Trim(name, ".") == "" {
		return "", errors.Errorf("invalid cart key %q", key)
	}
	return name + ".json", nil
}

func (s *Storage) path(key string) (string, error) {
	name, err := fileName(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

func (s *Storage) Load(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read cart %s", key)
	}
	return b, nil
}

// Save writes through a temp file and rename so readers never observe a
// partially written cart.
func (s *Storage) Save(_ context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write cart %s", key)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "sync cart %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close cart %s", key)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return errors.Wrapf(err, "rename cart %s", key)
	}
	return nil
}

// Ping checks that the root directory is still present.
func (s *Storage) Ping(context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return errors.Wrap(err, "stat cart root")
	}
	if !info.IsDir() {
		return errors.Errorf("cart root %s is not a directory", s.root)
	}
	return nil
}

func (s *Storage) Close() error { return nil }
