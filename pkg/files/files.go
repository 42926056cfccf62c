package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"tinyhttpd/pkg/state/logger"
)

var ErrNotFound = errors.New("resource not found")

// Store reads static resources from a directory on disk.
type Store struct {
	root  string
	index string
}

// NewStore serves files under root; "/" maps to index.
func NewStore(root, index string) *Store {
	if index == "" {
		index = "index.html"
	}
	return &Store{root: root, index: index}
}

func (s *Store) Root() string { return s.root }

// Resolve maps a request resource onto a path under the root. Query
// strings are dropped and ".." segments cannot climb above the root.
func (s *Store) Resolve(resource string) string {
	if i := strings.IndexAny(resource, "?#"); i >= 0 {
		resource = resource[:i]
	}
	clean := path.Clean("/" + resource)
	if clean == "/" {
		clean = "/" + s.index
	}
	return filepath.Join(s.root, filepath.FromSlash(clean))
}

// Read returns the full contents of resource. Any failure is logged and
// reported as ErrNotFound.
func (s *Store) Read(resource string) ([]byte, error) {
	p := s.Resolve(resource)
	fi, err := os.Stat(p)
	if err == nil && fi.IsDir() {
		err = fmt.Errorf("%s is a directory", p)
	}
	var data []byte
	if err == nil {
		data, err = os.ReadFile(p)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("file_missing", "path", p)
		} else {
			logger.Warn("file_read_failed", "path", p, "error", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, resource)
	}
	return data, nil
}
