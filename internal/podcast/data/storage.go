package data

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
)

const (
	// AudioExt is the extension of every generated file
	AudioExt = ".mp3"
	// maxNameRunes bounds the query prefix used as a file name
	maxNameRunes = 50
)

// Storage is the local directory holding generated podcasts
type Storage struct {
	dir string
}

// NewStorage creates dir when missing
func NewStorage(dir string) (*Storage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, apperrors.NewConfigMissingError("storage.output_dir")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Storage{dir: abs}, nil
}

// Dir returns the absolute output directory
func (s *Storage) Dir() string {
	return s.dir
}

// OutputPath returns where the podcast for query is written
func (s *Storage) OutputPath(query string) string {
	return filepath.Join(s.dir, FileName(query))
}

// FileName derives a file name from the first 50 runes of query, with whitespace and
// slashes replaced by underscores
func FileName(query string) string {
	runes := []rune(strings.TrimSpace(query))
	if len(runes) > maxNameRunes {
		runes = runes[:maxNameRunes]
	}
	for i, r := range runes {
		if unicode.IsSpace(r) || r == '/' || r == '\\' || r == 0 {
			runes[i] = '_'
		}
	}
	name := string(runes)
	if name == "" || name == "." || name == ".." {
		name = "podcast"
	}
	return name + AudioExt
}

// ContentDisposition builds an attachment header. Quotes and non-ASCII file names are
// encoded per RFC 2616 and RFC 2231.
func ContentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

// Open opens a generated file by base name. Names containing a path are rejected as
// not found so nothing outside the output directory is reachable.
func (s *Storage) Open(name string) (*os.File, os.FileInfo, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, nil, apperrors.NewNotFoundError("file not found")
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, nil, apperrors.NewNotFoundError("file not found")
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrAudioStorage, err.Error())
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, apperrors.Wrap(err, apperrors.ErrAudioStorage, err.Error())
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, apperrors.NewNotFoundError("file not found")
	}
	return f, info, nil
}

// ReadFile returns the content of the file at path, which must lie in the output directory
func (s *Storage) ReadFile(path string) ([]byte, error) {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel != filepath.Base(rel) {
		return nil, apperrors.NewNotFoundError("file not found")
	}
	data, err := os.ReadFile(filepath.Join(s.dir, rel))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrAudioStorage, err.Error())
	}
	return data, nil
}
