package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete archives past the retention period",
	Long: `Delete local archives older than the retention period.

Deletion is best-effort: a failure on one file is logged and does not stop
the sweep.

Examples:
  volkeep cleanup
  volkeep cleanup --days 7`,
	Args: cobra.NoArgs,
	Run:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention period in days (default from config)")
}

func runCleanup(cmd *cobra.Command, args []string) {
	env, err := newAppEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}
	defer env.Close()

	days := env.cfg.Backup.RetentionDays
	if cleanupDays > 0 {
		days = cleanupDays
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> cleaning up archives older than %d day(s)", days)))
	fmt.Println()

	if err := env.store.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	deleted, err := env.store.Cleanup(days, time.Now(), env.log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	if deleted == 0 {
		fmt.Println(dimStyle.Render("  nothing to delete"))
		return
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("  [done] deleted %d archive(s)", deleted)))
}
