package archive

import (
	"os"
	"time"

	"github.com/volkeep/volkeep/internal/logging"
)

// Cleanup deletes archives older than retentionDays. Deletion is
// best-effort: a failure on one file is logged and does not stop the sweep
// or raise an error. Returns the number of archives deleted.
func (s *Store) Cleanup(retentionDays int, now time.Time, log *logging.Logger) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	archives, err := s.List()
	if err != nil {
		return 0, err
	}

	maxAge := time.Duration(retentionDays) * 24 * time.Hour
	deleted := 0

	for _, a := range archives {
		if a.Age(now) <= maxAge {
			continue
		}

		if err := os.Remove(a.Path); err != nil {
			log.Logf("retention: failed to delete %s: %v", a.Path, err)
			continue
		}

		log.Logf("retention: deleted %s (age %dd, limit %dd)", a.Path, int(a.Age(now).Hours()/24), retentionDays)
		deleted++
	}

	return deleted, nil
}
