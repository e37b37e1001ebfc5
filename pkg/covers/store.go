package covers

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Store keeps cover images on the local filesystem under a single directory.
// Object names are random UUIDs so uploads never collide and old covers can
// be removed without touching book rows mid-write.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WithStack(err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the image to a new object and returns its name.
func (s *Store) Save(r io.Reader, ext string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", errors.WithStack(err)
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := id.String() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", errors.WithStack(err)
	}

	return name, nil
}

// Path returns the filesystem path for an object name, rejecting names that
// try to escape the store directory.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", errors.New("invalid object name")
	}
	return filepath.Join(s.dir, name), nil
}

// Delete removes an object. A missing object isn't an error since a prior
// delete may have already won.
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}
