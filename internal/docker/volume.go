package docker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/volkeep/volkeep/pkg/models"
)

func (c *Client) ListVolumes(ctx context.Context) ([]string, error) {
	resp, err := c.cli.VolumeList(ctx, volume.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}

	names := make([]string, 0, len(resp.Volumes))
	for _, v := range resp.Volumes {
		names = append(names, v.Name)
	}
	sort.Strings(names)

	return names, nil
}

func (c *Client) VolumeExists(ctx context.Context, volumeName string) (bool, error) {
	_, err := c.cli.VolumeInspect(ctx, volumeName)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MeasureVolumeSize probes a volume's uncompressed size with a read-only
// helper container. Returns 0 when the probe output cannot be parsed;
// callers treat 0 as unknown.
func (c *Client) MeasureVolumeSize(ctx context.Context, volumeName string) (int64, error) {
	mounts := []mount.Mount{
		{
			Type:     mount.TypeVolume,
			Source:   volumeName,
			Target:   "/volume-data",
			ReadOnly: true,
		},
	}

	out, err := c.runHelper(ctx, "du -sk /volume-data | awk '{print $1}'", mounts, true)
	if err != nil {
		return 0, fmt.Errorf("failed to measure volume %s: %w", volumeName, err)
	}

	kb, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return 0, nil
	}

	return kb * 1024, nil
}

// BackupVolume streams the volume's content tree through tar|gzip into
// archivePath. The progress observer is polled from the growing archive
// file while the pipeline runs.
func (c *Client) BackupVolume(ctx context.Context, volumeName, archivePath string, totalBytes int64, progress models.ProgressFunc) error {
	backupDir := filepath.Dir(archivePath)
	backupFile := filepath.Base(archivePath)

	mounts := []mount.Mount{
		{
			Type:     mount.TypeVolume,
			Source:   volumeName,
			Target:   "/volume-data",
			ReadOnly: true,
		},
		{
			Type:   mount.TypeBind,
			Source: backupDir,
			Target: "/backup",
		},
	}

	stop := watchFileSize(archivePath, totalBytes, progress)
	defer stop()

	cmd := fmt.Sprintf("tar czf /backup/%s -C /volume-data .", backupFile)
	if _, err := c.runHelper(ctx, cmd, mounts, false); err != nil {
		return fmt.Errorf("backup pipeline failed for volume %s: %w", volumeName, err)
	}

	return nil
}

// RestoreVolume replaces the volume's contents with the archive's. All
// existing data in the volume is deleted first.
func (c *Client) RestoreVolume(ctx context.Context, volumeName, archivePath string, progress models.ProgressFunc) error {
	backupDir := filepath.Dir(archivePath)
	backupFile := filepath.Base(archivePath)

	var total int64
	if info, err := os.Stat(archivePath); err == nil {
		total = info.Size()
	}
	if progress != nil {
		progress(0, total)
	}

	mounts := []mount.Mount{
		{
			Type:   mount.TypeVolume,
			Source: volumeName,
			Target: "/volume-data",
		},
		{
			Type:     mount.TypeBind,
			Source:   backupDir,
			Target:   "/backup",
			ReadOnly: true,
		},
	}

	cmd := fmt.Sprintf("rm -rf /volume-data/* /volume-data/..?* /volume-data/.[!.]* 2>/dev/null || true && tar xzf /backup/%s -C /volume-data", backupFile)
	if _, err := c.runHelper(ctx, cmd, mounts, false); err != nil {
		return fmt.Errorf("restore pipeline failed for volume %s: %w", volumeName, err)
	}

	if progress != nil {
		progress(total, total)
	}

	return nil
}

func (c *Client) runHelper(ctx context.Context, cmd string, mounts []mount.Mount, captureOutput bool) (string, error) {
	config := &container.Config{
		Image: c.helperImage,
		Cmd:   []string{"sh", "-c", cmd},
	}

	hostConfig := &container.HostConfig{
		Mounts:     mounts,
		AutoRemove: !captureOutput,
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create helper container: %w", err)
	}

	if captureOutput {
		defer c.cli.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true})
	}

	if err := c.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start helper container: %w", err)
	}

	statusCh, errCh := c.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return "", fmt.Errorf("error waiting for helper container: %w", err)
		}
	case status := <-statusCh:
		if status.StatusCode != 0 {
			return "", fmt.Errorf("helper container exited with code %d", status.StatusCode)
		}
	}

	if !captureOutput {
		return "", nil
	}

	logs, err := c.cli.ContainerLogs(ctx, resp.ID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", fmt.Errorf("failed to read helper container output: %w", err)
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return "", fmt.Errorf("failed to decode helper container output: %w", err)
	}

	return stdout.String(), nil
}

// watchFileSize polls the archive file size while a backup pipeline writes
// it, feeding the progress observer. Returns a function that stops the
// poller and emits a final update.
func watchFileSize(path string, totalBytes int64, progress models.ProgressFunc) func() {
	if progress == nil {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if info, err := os.Stat(path); err == nil {
					progress(info.Size(), totalBytes)
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		if info, err := os.Stat(path); err == nil {
			progress(info.Size(), totalBytes)
		}
	}
}
