package archive

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/volkeep/volkeep/pkg/models"
)

const (
	TimestampLayout = "20060102-150405"
	Suffix          = ".tar.gz"
)

// IsValidVolumeName reports whether a volume name is safe to embed in an
// archive file name.
func IsValidVolumeName(name string) bool {
	if len(name) == 0 {
		return false
	}
	if name[0] == '-' || name[len(name)-1] == '-' {
		return false
	}
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.') {
			return false
		}
	}
	return true
}

// IsValidHostLabel is stricter than IsValidVolumeName: '-' is the field
// separator in archive names, and keeping it out of the host label is what
// makes the volume/host split of a file name unambiguous.
func IsValidHostLabel(name string) bool {
	return IsValidVolumeName(name) && !strings.Contains(name, "-")
}

// DeriveArchivePath builds the archive path for a (volume, host, timestamp)
// triple: {storeDir}/{volume}-{host}-{timestamp}.tar.gz. Names that would
// break the naming scheme are rejected rather than sanitized. Distinct
// triples always derive distinct names: the timestamp is fixed-width and
// the host label may not contain the separator.
func DeriveArchivePath(storeDir, volumeName, hostLabel string, timestamp time.Time) (string, error) {
	if !IsValidVolumeName(volumeName) {
		return "", fmt.Errorf("invalid volume name %q: only letters, digits, '-', '_' and '.' are allowed", volumeName)
	}
	if !IsValidHostLabel(hostLabel) {
		return "", fmt.Errorf("invalid host label %q: only letters, digits, '_' and '.' are allowed", hostLabel)
	}

	name := fmt.Sprintf("%s-%s-%s%s", volumeName, hostLabel, timestamp.Format(TimestampLayout), Suffix)
	return filepath.Join(storeDir, name), nil
}

// ParseArchiveName decodes an archive file name back into its parts. The
// timestamp is fixed-width and recovered exactly; the host is the last '-'
// separated token, which round-trips DeriveArchivePath output because host
// labels never contain '-'.
func ParseArchiveName(name string) (models.Archive, bool) {
	if !strings.HasSuffix(name, Suffix) {
		return models.Archive{}, false
	}

	base := strings.TrimSuffix(name, Suffix)
	if len(base) < len(TimestampLayout)+1 {
		return models.Archive{}, false
	}

	tsPart := base[len(base)-len(TimestampLayout):]
	rest := base[:len(base)-len(TimestampLayout)]
	if !strings.HasSuffix(rest, "-") {
		return models.Archive{}, false
	}
	rest = strings.TrimSuffix(rest, "-")

	timestamp, err := time.ParseInLocation(TimestampLayout, tsPart, time.Local)
	if err != nil {
		return models.Archive{}, false
	}

	sep := strings.LastIndex(rest, "-")
	if sep <= 0 || sep == len(rest)-1 {
		return models.Archive{}, false
	}

	return models.Archive{
		VolumeName: rest[:sep],
		HostLabel:  rest[sep+1:],
		Timestamp:  timestamp,
	}, true
}
