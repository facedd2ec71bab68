package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/suxatcode/learn-graph-layout/layout"
)

// SaveFile writes pos and meta as a layout document to path.
func SaveFile[ID comparable](path string, pos map[ID]layout.Position, meta map[string]interface{}) error {
	return WriteRecordFile(path, NewRecord(pos, meta))
}

// LoadFile reads the positions of the layout document at path. Vertex ids
// are returned as strings.
func LoadFile(path string) (map[string]layout.Position, error) {
	r, err := ReadRecordFile(path)
	if err != nil {
		return nil, err
	}
	return r.Pos, nil
}

// WriteRecordFile writes r to a temporary file next to path and renames it,
// so readers never observe a partially written layout.
func WriteRecordFile(path string, r *Record) error {
	data, err := EncodeRecord(r)
	if err != nil {
		return errors.Wrapf(err, "failed to encode layout for '%s'", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".layout-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func ReadRecordFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRecord(path, data)
}

// FileStore implements Store with one json document per layout in a
// directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// ValidName returns an error for layout names, that cannot safely be used as
// a file name or cache key.
func ValidName(name string) error {
	ok := name != "" && !strings.HasPrefix(name, ".") && All([]rune(name), func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.'
	})
	if !ok {
		return errors.Errorf("invalid layout name '%s'", name)
	}
	return nil
}

func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.dir, name+".json")
}

func (fs *FileStore) SaveLayout(ctx context.Context, name string, record *Record) error {
	if err := ValidName(name); err != nil {
		return err
	}
	return WriteRecordFile(fs.path(name), record)
}

func (fs *FileStore) LoadLayout(ctx context.Context, name string) (*Record, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	r, err := ReadRecordFile(fs.path(name))
	if os.IsNotExist(err) {
		return nil, ErrLayoutNotFound
	}
	return r, err
}

func (fs *FileStore) DeleteLayout(ctx context.Context, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	err := os.Remove(fs.path(name))
	if os.IsNotExist(err) {
		return ErrLayoutNotFound
	}
	return err
}
