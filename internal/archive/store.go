package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/volkeep/volkeep/pkg/models"
)

// Store is a flat directory of archive files. There is no manifest;
// enumeration is purely directory-listing based.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// EnsureDir creates the store directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive store %s: %w", s.Dir, err)
	}
	return nil
}

// List enumerates archives in the store, newest first. An empty store is a
// valid result; a missing or unreadable store directory is an error.
func (s *Store) List() ([]models.Archive, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive store %s: %w", s.Dir, err)
	}

	archives := []models.Archive{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		parsed, ok := ParseArchiveName(entry.Name())
		if !ok {
			continue
		}

		parsed.Path = filepath.Join(s.Dir, entry.Name())
		if info, err := entry.Info(); err == nil {
			parsed.SizeBytes = info.Size()
		}

		archives = append(archives, parsed)
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Timestamp.After(archives[j].Timestamp)
	})

	return archives, nil
}

// ListVolume filters the store down to one volume's archives.
func (s *Store) ListVolume(volumeName string) ([]models.Archive, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	filtered := []models.Archive{}
	for _, a := range all {
		if a.VolumeName == volumeName {
			filtered = append(filtered, a)
		}
	}

	return filtered, nil
}
