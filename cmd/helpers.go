package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/volkeep/volkeep/internal/archive"
	"github.com/volkeep/volkeep/internal/config"
	"github.com/volkeep/volkeep/internal/docker"
	"github.com/volkeep/volkeep/internal/logging"
	"github.com/volkeep/volkeep/pkg/models"
)

// appEnv wires the engine's collaborators together for one command
// invocation.
type appEnv struct {
	cfg       *models.GlobalConfig
	log       *logging.Logger
	store     *archive.Store
	hostLabel string

	client     *docker.Client
	clientOnce sync.Once
	clientErr  error
}

func newAppEnv() (*appEnv, error) {
	cm, err := config.NewConfigManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := cm.GetConfig()

	log, err := logging.Open(cfg.Store.LogPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		log.Tee(os.Stderr)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	hostLabel, _, _ := strings.Cut(hostname, ".")
	// '-' separates fields in archive file names and cannot appear in the
	// host label, so hosts like build-01 become build_01
	hostLabel = strings.ReplaceAll(hostLabel, "-", "_")

	return &appEnv{
		cfg:       cfg,
		log:       log,
		store:     archive.NewStore(cfg.Store.Dir),
		hostLabel: hostLabel,
	}, nil
}

// runtimeClient connects to the container runtime on first use so that
// store-only commands work without a running daemon.
func (e *appEnv) runtimeClient() (*docker.Client, error) {
	e.clientOnce.Do(func() {
		e.client, e.clientErr = docker.NewClient(e.cfg.Runtime.Prefer, e.cfg.Backup.HelperImage)
	})
	return e.client, e.clientErr
}

func (e *appEnv) Close() {
	if e.client != nil {
		e.client.Close()
	}
	e.log.Close()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM. The
// interruption is logged and surfaced to the operator.
func (e *appEnv) signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-signals:
			e.log.Logf("operation interrupted by signal")
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, errorStyle.Render("  [warn] interrupted, aborting"))
			cancel()
		case <-ctx.Done():
		}
	}()

	stop := func() {
		signal.Stop(signals)
		cancel()
	}
	return ctx, stop
}

func (e *appEnv) endpoint(user, address, storePath string) (models.RemoteEndpoint, error) {
	ep := models.RemoteEndpoint{
		User:      e.cfg.Remote.User,
		Address:   e.cfg.Remote.Address,
		StorePath: e.cfg.Remote.StorePath,
	}
	if user != "" {
		ep.User = user
	}
	if address != "" {
		ep.Address = address
	}
	if storePath != "" {
		ep.StorePath = storePath
	}

	if ep.User == "" || ep.Address == "" {
		return ep, fmt.Errorf("remote user and address required (flags or [remote] config section)")
	}
	if ep.StorePath == "" {
		ep.StorePath = ".volkeep/archives"
	}
	return ep, nil
}

func confirm(prompt string) bool {
	fmt.Printf("  %s [y/N]: ", prompt)

	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// progressPrinter renders throttled progress updates for one volume.
// total == 0 renders an un-sized indicator.
func progressPrinter(label string) models.ProgressFunc {
	var mu sync.Mutex
	var lastPrint time.Time

	return func(done, total int64) {
		mu.Lock()
		defer mu.Unlock()

		if time.Since(lastPrint) < 2*time.Second {
			return
		}
		lastPrint = time.Now()

		if total > 0 {
			fmt.Println(progressStyle.Render(fmt.Sprintf("  --> %s: %s of %s", label, humanize.Bytes(uint64(done)), humanize.Bytes(uint64(total)))))
		} else {
			fmt.Println(progressStyle.Render(fmt.Sprintf("  --> %s: %s", label, humanize.Bytes(uint64(done)))))
		}
	}
}
