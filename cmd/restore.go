package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/volkeep/volkeep/internal/engine"
)

var restoreYes bool

var restoreCmd = &cobra.Command{
	Use:   "restore [archive] [volume-name]",
	Short: "Restore a volume from an archive",
	Long: `Restore a volume's data from a backup archive.

The archive may be given as a path or as a file name inside the local
archive store.

WARNING: This replaces all data currently in the volume.

Examples:
  volkeep restore pgdata-web01-20250601-123045.tar.gz pgdata
  volkeep restore /backups/pgdata-web01-20250601-123045.tar.gz pgdata`,
	Args: cobra.ExactArgs(2),
	Run:  runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "skip the confirmation prompt")
}

func runRestore(cmd *cobra.Command, args []string) {
	archiveArg := args[0]
	volumeName := args[1]

	env, err := newAppEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}
	defer env.Close()

	client, err := env.runtimeClient()
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

	info, err := os.Stat(archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s archive not found: %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> restoring volume: %s", volumeName)))
	fmt.Println()
	fmt.Println("  " + dimStyle.Render("archive:"))
	fmt.Printf("    path: %s\n", dimStyle.Render(archivePath))
	fmt.Printf("    size: %s\n", dimStyle.Render(humanize.Bytes(uint64(info.Size()))))
	fmt.Printf("    modified: %s\n", dimStyle.Render(info.ModTime().Format("2006-01-02 15:04:05")))
	fmt.Println()
	fmt.Println(errorStyle.Render("  [warn] this will permanently delete all current data in the volume"))
	fmt.Println()

	ctx, stop := env.signalContext()
	defer stop()

	restorer := engine.NewRestoreEngine(client, env.log)
	restorer.Progress = progressPrinter(volumeName)
	if !restoreYes {
		restorer.Confirm = func(archivePath, targetVolume string) (bool, error) {
			return confirm("continue?"), nil
		}
	}

	fmt.Println(progressStyle.Render("  --> restoring from archive..."))

	if err := restorer.Restore(ctx, archivePath, volumeName); err != nil {
		if errors.Is(err, engine.ErrCancelled) {
			fmt.Println()
			fmt.Println(infoStyle.Render("  [info] cancelled"))
			return
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("  [done] volume restored successfully"))
}
