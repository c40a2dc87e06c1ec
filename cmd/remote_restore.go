package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/volkeep/volkeep/internal/engine"
	"github.com/volkeep/volkeep/internal/transfer"
)

var remoteRestoreYes bool

var remoteRestoreCmd = &cobra.Command{
	Use:   "remote-restore [remote-archive] [volume-name]",
	Short: "Fetch an archive from a remote host and restore it",
	Long: `Fetch an archive from a remote host's store and restore it into a
local volume, as one operation.

The restore only runs after the fetch completed. If the restore fails the
fetched archive stays in the local store so the restore can be retried
without fetching again.

Examples:
  volkeep remote-restore pgdata-web02-20250601-123045.tar.gz pgdata --address 192.168.1.20 --user backup`,
	Args: cobra.ExactArgs(2),
	Run:  runRemoteRestore,
}

func init() {
	rootCmd.AddCommand(remoteRestoreCmd)
	addRemoteFlags(remoteRestoreCmd)
	remoteRestoreCmd.Flags().BoolVarP(&remoteRestoreYes, "yes", "y", false, "skip the confirmation prompt")
}

func runRemoteRestore(cmd *cobra.Command, args []string) {
	remoteArchive := args[0]
	volumeName := args[1]

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

	client, err := env.runtimeClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> remote restore: %s -> %s", remoteArchive, volumeName)))
	fmt.Println()
	fmt.Printf("  source: %s\n", dimStyle.Render(fmt.Sprintf("%s:%s", endpoint.Target(), endpoint.StorePath)))
	fmt.Printf("  target volume: %s\n", valueStyle.Render(volumeName))
	fmt.Println()
	fmt.Println(errorStyle.Render("  [warn] this will permanently delete all current data in the volume"))
	fmt.Println()

	// confirm once for the whole fetch-then-restore operation
	if !remoteRestoreYes && !confirm("continue?") {
		fmt.Println()
		fmt.Println(infoStyle.Render("  [info] cancelled"))
		return
	}
	fmt.Println()

	ctx, stop := env.signalContext()
	defer stop()

	eng := transfer.NewEngine(env.log)
	eng.ProgressOut = os.Stdout

	restorer := engine.NewRestoreEngine(client, env.log)
	restorer.Progress = progressPrinter(volumeName)

	orchestrator := engine.NewRemoteRestorer(eng, restorer, env.store, env.log)

	fmt.Println(progressStyle.Render("  --> fetching archive..."))

	if err := orchestrator.RemoteRestore(ctx, endpoint, remoteArchive, volumeName); err != nil {
		var stageErr *engine.StageError
		if errors.As(err, &stageErr) && stageErr.Stage == engine.StageRestore {
			fmt.Fprintf(os.Stderr, "%s restore failed after fetch: %v\n", errorStyle.Render("[error]"), stageErr.Err)
			fmt.Fprintln(os.Stderr, dimStyle.Render("  the fetched archive was kept in the local store for a retry"))
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		}
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("  [done] volume restored from remote archive"))
}
