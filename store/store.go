// Package store persists generated PDFs in the service's files directory so
// repeat requests for the same resume are served without reconversion.
package store

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
)

// Store is a TTL cache of rendered PDFs on a billy filesystem.
type Store struct {
	fs  billy.Filesystem
	ttl time.Duration
	now func() time.Time
}

// New returns a Store over the given filesystem. A zero TTL means entries
// never go stale.
func New(fs billy.Filesystem, ttl time.Duration) *Store {
	return &Store{fs: fs, ttl: ttl, now: time.Now}
}

// NewOS returns a Store rooted at dir on the host filesystem, creating the
// directory if needed.
func NewOS(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating files directory %s", dir)
	}
	return New(osfs.New(dir), ttl), nil
}

func fileName(id string, searchable bool) string {
	variant := "flat"
	if searchable {
		variant = "searchable"
	}
	return fmt.Sprintf("%s-%s.pdf", id, variant)
}

// Get returns the stored PDF for the resume if present and fresh.
func (s *Store) Get(id string, searchable bool) ([]byte, bool) {
	name := fileName(id, searchable)
	fi, err := s.fs.Stat(name)
	if err != nil {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(fi.ModTime()) > s.ttl {
		return nil, false
	}
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores a PDF, replacing any prior entry. The write goes through a
// temporary name so readers never observe a partial file.
func (s *Store) Put(id string, searchable bool, data []byte) error {
	name := fileName(id, searchable)
	tmp := name + ".tmp"
	if err := util.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		return errors.Wrapf(err, "publishing %s", name)
	}
	return nil
}

// CheckWritable probes the files directory; the health endpoint depends on
// it succeeding.
func (s *Store) CheckWritable() error {
	const probe = ".healthcheck"
	if err := util.WriteFile(s.fs, probe, []byte("ok"), 0o644); err != nil {
		return errors.Wrap(err, "files directory not writable")
	}
	return s.fs.Remove(probe)
}
