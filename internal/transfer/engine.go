package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/volkeep/volkeep/internal/archive"
	"github.com/volkeep/volkeep/internal/logging"
	"github.com/volkeep/volkeep/pkg/models"
)

var (
	// ErrProbeFailed marks connectivity/auth failures, as opposed to bulk
	// copy failures. Callers branch on it with errors.Is.
	ErrProbeFailed = errors.New("connectivity probe failed")
)

const defaultProbeTimeout = 10 * time.Second

// Engine copies archives to and from remote hosts over ssh/rsync.
type Engine struct {
	log          *logging.Logger
	probeTimeout time.Duration

	// ProgressOut receives rsync's progress stream. Defaults to discard.
	ProgressOut io.Writer
}

func NewEngine(log *logging.Logger) *Engine {
	return &Engine{
		log:          log,
		probeTimeout: defaultProbeTimeout,
		ProgressOut:  io.Discard,
	}
}

// CheckDependencies reports which of the external tools the engine shells
// out to are missing from PATH.
func CheckDependencies() error {
	missing := []string{}
	for _, tool := range []string{"ssh", "rsync"} {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("required tools not found in PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Probe validates the endpoint address and opens a short-lived
// authenticated ssh session to confirm reachability and credentials.
func (e *Engine) Probe(ctx context.Context, endpoint models.RemoteEndpoint) error {
	if err := ValidateIPv4(endpoint.Address); err != nil {
		return err
	}

	probeCtx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()

	args := append(sshOptions(), endpoint.Target(), "true")
	cmd := exec.CommandContext(probeCtx, "ssh", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		e.log.Logf("probe failed for %s: %v", endpoint.Target(), err)
		output := strings.TrimSpace(string(out))
		if output == "" {
			return fmt.Errorf("%w for %s: %v", ErrProbeFailed, endpoint.Target(), err)
		}
		return fmt.Errorf("%w for %s: %v: %s", ErrProbeFailed, endpoint.Target(), err, output)
	}

	e.log.Logf("probe succeeded for %s", endpoint.Target())
	return nil
}

// Push copies a local archive into the remote store. Pre-flight address
// validation and probe short-circuit before any bulk copy is attempted.
func (e *Engine) Push(ctx context.Context, archivePath string, endpoint models.RemoteEndpoint) error {
	if err := e.Probe(ctx, endpoint); err != nil {
		return err
	}

	dst := fmt.Sprintf("%s:%s/", endpoint.Target(), endpoint.StorePath)
	if err := e.rsync(ctx, archivePath, dst); err != nil {
		e.log.Logf("transfer to %s failed: %v", endpoint.Target(), err)
		return fmt.Errorf("failed to copy %s to %s: %w", archivePath, endpoint.Target(), err)
	}

	e.log.Logf("transferred %s to %s:%s", archivePath, endpoint.Target(), endpoint.StorePath)
	return nil
}

// Fetch copies a remote archive into destDir and returns the local path.
func (e *Engine) Fetch(ctx context.Context, endpoint models.RemoteEndpoint, remoteArchiveName, destDir string) (string, error) {
	if err := e.Probe(ctx, endpoint); err != nil {
		return "", err
	}

	src := fmt.Sprintf("%s:%s/%s", endpoint.Target(), endpoint.StorePath, remoteArchiveName)
	localPath := filepath.Join(destDir, remoteArchiveName)

	if err := e.rsync(ctx, src, localPath); err != nil {
		e.log.Logf("fetch of %s from %s failed: %v", remoteArchiveName, endpoint.Target(), err)
		return "", fmt.Errorf("failed to fetch %s from %s: %w", remoteArchiveName, endpoint.Target(), err)
	}

	e.log.Logf("fetched %s from %s:%s", remoteArchiveName, endpoint.Target(), endpoint.StorePath)
	return localPath, nil
}

// ListRemote enumerates archive files in the remote store over an
// authenticated ssh session. A store directory that exists but holds no
// archives yields an empty slice; a missing directory, a permission
// failure, or a session failure is an error, never an empty listing.
func (e *Engine) ListRemote(ctx context.Context, endpoint models.RemoteEndpoint) ([]string, error) {
	if err := e.Probe(ctx, endpoint); err != nil {
		return nil, err
	}

	args := append(sshOptions(), endpoint.Target(), "ls -1 "+endpoint.StorePath)
	cmd := exec.CommandContext(ctx, "ssh", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("remote listing on %s failed: %w: %s", endpoint.Target(), err, strings.TrimSpace(string(out)))
	}

	names := []string{}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, ok := archive.ParseArchiveName(line); ok {
			names = append(names, line)
		}
	}
	sort.Strings(names)

	return names, nil
}

func (e *Engine) rsync(ctx context.Context, src, dst string) error {
	args := []string{"-az", "--partial", "--info=progress2", "-e", "ssh " + strings.Join(sshOptions(), " "), src, dst}
	cmd := exec.CommandContext(ctx, "rsync", args...)
	cmd.Stdout = e.ProgressOut

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return err
		}
		return fmt.Errorf("%w: %s", err, msg)
	}
	return nil
}

func sshOptions() []string {
	return []string{"-o", "BatchMode=yes", "-o", "StrictHostKeyChecking=accept-new"}
}
