// Package store manages the data directory that holds the mirrored emoji
// files and the index they were mirrored from.
package store

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/emoji-mirror/pkg/emoji"
	"github.com/sidkik/emoji-mirror/pkg/errors"
)

// IndexFileName is the name of the file that records the raw index of the
// last successful pass.
const IndexFileName = "index.json"

// tempPrefix is used for files that are still being written. They're renamed
// into place once complete.
const tempPrefix = ".tmp-"

// Store is a directory containing one file per emoji, plus the index file.
type Store struct {
	fs  afero.Fs
	dir string
}

// New returns a Store rooted at dir within fs.
func New(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Fs returns the filesystem backing the store.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Init creates the data directory if it doesn't exist yet.
func (s *Store) Init() error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return errors.WithContext(err, "create data directory")
	}
	return nil
}

// ValidName returns an error if name can't be stored as a file directly
// inside the data directory.
func ValidName(name string) error {
	switch {
	case name == "", name == ".", name == "..", name == IndexFileName,
		strings.HasPrefix(name, tempPrefix),
		strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return errors.InvalidNameError{Name: name}
	}
	return nil
}

// LoadIndex returns the index persisted by the last successful pass. If
// there isn't one, or it can't be parsed, an empty index is returned so that
// everything gets mirrored again.
func (s *Store) LoadIndex() emoji.RawIndex {
	path := s.path(IndexFileName)
	indexBytes, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", path).Debug("No previous index. Starting from scratch.")
		} else {
			log.WithError(err).WithField("path", path).Warn(
				"Failed to read previous index. Starting from scratch.")
		}
		return emoji.EmptyRawIndex()
	}

	var index emoji.RawIndex
	if err := json.Unmarshal(indexBytes, &index); err != nil {
		log.WithError(err).WithField("path", path).Warn(
			"Previous index is corrupt. Starting from scratch.")
		return emoji.EmptyRawIndex()
	}

	if index.Emoji == nil {
		index.Emoji = map[string]string{}
	}
	return index
}

// SaveIndex overwrites the persisted index with `index`.
func (s *Store) SaveIndex(index emoji.RawIndex) error {
	indexBytes, err := json.Marshal(index)
	if err != nil {
		return errors.WithContext(err, "marshal index")
	}

	if err := afero.WriteFile(s.fs, s.tempPath(IndexFileName), indexBytes, 0644); err != nil {
		return errors.WithContext(err, "write index")
	}
	return s.commit(IndexFileName)
}

// Remove deletes the file for the given emoji. It's not an error if the
// file is already gone.
func (s *Store) Remove(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}

	err := s.fs.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.WithContext(err, "remove")
	}
	return nil
}

// Write stores the contents of r as the file for the given emoji. The
// previous contents are only replaced once r has been fully read.
func (s *Store) Write(name string, r io.Reader) (int64, error) {
	if err := ValidName(name); err != nil {
		return 0, err
	}

	f, err := s.fs.OpenFile(s.tempPath(name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return 0, errors.WithContext(err, "create")
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		s.cleanupTemp(name)
		return n, errors.WithContext(err, "write")
	}

	return n, s.commit(name)
}

// Names returns the names of the emoji files currently in the store.
func (s *Store) Names() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithContext(err, "read data directory")
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() || ValidName(info.Name()) != nil {
			continue
		}
		names = append(names, info.Name())
	}
	return names, nil
}

func (s *Store) commit(name string) error {
	if err := s.fs.Rename(s.tempPath(name), s.path(name)); err != nil {
		s.cleanupTemp(name)
		return errors.WithContext(err, "rename into place")
	}
	return nil
}

func (s *Store) cleanupTemp(name string) {
	if err := s.fs.Remove(s.tempPath(name)); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("name", name).Warn(
			"Failed to clean up partially written file.")
	}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) tempPath(name string) string {
	return filepath.Join(s.dir, tempPrefix+name)
}
