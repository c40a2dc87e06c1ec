package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/volkeep/volkeep/internal/archive"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [archive]",
	Short: "Check an archive for corruption",
	Long: `Walk an archive's full table of contents without extracting it.

Any read or format error classifies the archive as corrupt. The archive is
never modified.

Examples:
  volkeep verify pgdata-web01-20250601-123045.tar.gz
  volkeep verify /backups/pgdata-web01-20250601-123045.tar.gz`,
	Args: cobra.ExactArgs(1),
	Run:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	env, err := newAppEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}
	defer env.Close()

	archivePath := args[0]
	if !filepath.IsAbs(archivePath) {
		if _, err := os.Stat(archivePath); err != nil {
			archivePath = filepath.Join(env.store.Dir, args[0])
		}
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> verifying %s", filepath.Base(archivePath))))
	fmt.Println()

	verifier := archive.NewVerifier(env.log)
	if err := verifier.Verify(archivePath); err != nil {
		fmt.Fprintf(os.Stderr, "%s archive is corrupt: %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	fmt.Println(successStyle.Render("  [done] archive is valid"))
}
