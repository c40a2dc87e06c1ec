package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/volkeep/volkeep/internal/transfer"
)

var (
	remoteUser  string
	remoteAddr  string
	remoteStore string
)

var transferCmd = &cobra.Command{
	Use:   "transfer [archive]",
	Short: "Copy an archive to a remote host",
	Long: `Copy a local archive into a remote host's archive store over ssh.

The remote address must be an IPv4 address; reachability and credentials
are probed before any data is copied.

Examples:
  volkeep transfer pgdata-web01-20250601-123045.tar.gz --user backup --address 192.168.1.20
  volkeep transfer /backups/pgdata-web01-20250601-123045.tar.gz`,
	Args: cobra.ExactArgs(1),
	Run:  runTransfer,
}

func init() {
	rootCmd.AddCommand(transferCmd)
	addRemoteFlags(transferCmd)
}

func addRemoteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&remoteUser, "user", "", "remote user (default from config)")
	cmd.Flags().StringVar(&remoteAddr, "address", "", "remote IPv4 address (default from config)")
	cmd.Flags().StringVar(&remoteStore, "remote-store", "", "remote archive store path (default from config)")
}

func runTransfer(cmd *cobra.Command, args []string) {
	archiveArg := args[0]

	env, err := newAppEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}
	defer env.Close()

	if err := transfer.CheckDependencies(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	endpoint, err := env.endpoint(remoteUser, remoteAddr, remoteStore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	archivePath := archiveArg
	if !filepath.IsAbs(archivePath) {
		if _, err := os.Stat(archivePath); err != nil {
			archivePath = filepath.Join(env.store.Dir, archiveArg)
		}
	}
	if _, err := os.Stat(archivePath); err != nil {
		fmt.Fprintf(os.Stderr, "%s archive not found: %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> transferring to %s", endpoint.Target())))
	fmt.Println()
	fmt.Printf("  archive: %s\n", dimStyle.Render(archivePath))
	fmt.Printf("  destination: %s\n", dimStyle.Render(endpoint.StorePath))
	fmt.Println()

	ctx, stop := env.signalContext()
	defer stop()

	eng := transfer.NewEngine(env.log)
	eng.ProgressOut = os.Stdout

	fmt.Println(progressStyle.Render("  --> probing remote host..."))
	fmt.Println(progressStyle.Render("  --> copying..."))

	if err := eng.Push(ctx, archivePath, endpoint); err != nil {
		if errors.Is(err, transfer.ErrProbeFailed) {
			fmt.Fprintf(os.Stderr, "%s remote host unreachable: %v\n", errorStyle.Render("[error]"), err)
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		}
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("  [done] archive transferred"))
}
