package models

import (
	"path/filepath"
	"time"
)

type Archive struct {
	VolumeName string    `json:"volume_name"`
	HostLabel  string    `json:"host_label"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
}

// Age reports how long ago the archive was created.
func (a Archive) Age(now time.Time) time.Duration {
	return now.Sub(a.Timestamp)
}

// Basename returns the file name portion of the archive path.
func (a Archive) Basename() string {
	return filepath.Base(a.Path)
}
