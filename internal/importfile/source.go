package importfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

// ArchivePrefix names archived import files: neue_Sets_<timestamp>.<ext>.
const ArchivePrefix = "neue_Sets"

const archiveTimeLayout = "2006-01-02_150405"

// File is a loaded import file.
type File struct {
	Path string
	Ext  string
	Rows []Row
}

// Source locates, reads and archives the import file.
type Source interface {
	// Open reads the first existing candidate. Returns domain.ErrImportFileMissing
	// when none exists.
	Open(ctx context.Context) (*File, error)

	// Archive moves f into the archive and returns the new path.
	Archive(ctx context.Context, f *File) (string, error)
}

type fileSource struct {
	paths      []string
	archiveDir string
	now        func() time.Time
}

// NewFileSource creates a source over candidate paths, checked in order.
func NewFileSource(archiveDir string, paths ...string) Source {
	return &fileSource{paths: paths, archiveDir: archiveDir, now: time.Now}
}

func (s *fileSource) Open(_ context.Context) (*File, error) {
	for _, p := range s.paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("importfile: read %s: %w", p, err)
		}
		ext := filepath.Ext(p)
		rows, err := Parse(ext, data)
		if err != nil {
			return nil, fmt.Errorf("importfile: %s: %w", p, err)
		}
		return &File{Path: p, Ext: ext, Rows: rows}, nil
	}
	return nil, domain.ErrImportFileMissing
}

func (s *fileSource) Archive(_ context.Context, f *File) (string, error) {
	if err := os.MkdirAll(s.archiveDir, 0o775); err != nil {
		return "", fmt.Errorf("importfile: create archive dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s%s", ArchivePrefix, s.now().Format(archiveTimeLayout), f.Ext)
	dst := filepath.Join(s.archiveDir, name)
	if err := os.Rename(f.Path, dst); err != nil {
		return "", fmt.Errorf("importfile: archive %s: %w", f.Path, err)
	}
	return dst, nil
}
