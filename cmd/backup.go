package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/volkeep/volkeep/internal/archive"
	"github.com/volkeep/volkeep/internal/engine"
)

var backupAll bool

var backupCmd = &cobra.Command{
	Use:   "backup [volume-name...]",
	Short: "Backup volumes to timestamped archives",
	Long: `Back up one or more named volumes to compressed archives.

Each selected volume is backed up concurrently; one volume's failure does
not stop the others. Archives older than the retention period are cleaned
up before the run starts.

Examples:
  volkeep backup pgdata
  volkeep backup pgdata uploads redis-data
  volkeep backup --all
  volkeep backup          # pick volumes interactively`,
	Run: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().BoolVar(&backupAll, "all", false, "backup every named volume")
}

func runBackup(cmd *cobra.Command, args []string) {
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

	ctx, stop := env.signalContext()
	defer stop()

	selected := args
	if len(selected) == 0 {
		selected, err = selectVolumes(ctx, env, backupAll)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
			os.Exit(1)
		}
		if len(selected) == 0 {
			fmt.Println(infoStyle.Render("  [info] nothing selected"))
			return
		}
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> backing up %d volume(s)", len(selected))))
	fmt.Println()

	verifier := archive.NewVerifier(env.log)
	runner := engine.NewRunner(client, env.store, verifier, env.log, env.hostLabel, env.cfg.Backup.RetentionDays)
	runner.Progress = progressPrinter

	results, err := runner.RunBackup(ctx, selected)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	fmt.Println()
	failed := 0
	for _, result := range results {
		switch result.Status {
		case engine.StatusSuccess:
			fmt.Printf("  %s %s\n", successStyle.Render("[done]"), valueStyle.Render(result.Volume))
			fmt.Printf("    archive: %s\n", dimStyle.Render(result.ArchivePath))
			fmt.Printf("    size: %s\n", dimStyle.Render(humanize.Bytes(uint64(result.SizeBytes))))
		case engine.StatusVerifyFailed:
			failed++
			fmt.Printf("  %s %s: verification failed: %v\n", errorStyle.Render("[error]"), result.Volume, result.Err)
			fmt.Printf("    archive kept for inspection: %s\n", dimStyle.Render(result.ArchivePath))
		default:
			failed++
			fmt.Printf("  %s %s: %v\n", errorStyle.Render("[error]"), result.Volume, result.Err)
		}
	}

	fmt.Println()
	if failed > 0 {
		fmt.Println(errorStyle.Render(fmt.Sprintf("  %d of %d backup(s) failed", failed, len(results))))
		os.Exit(1)
	}
	fmt.Println(successStyle.Render("  [done] all backups completed"))
}

func selectVolumes(ctx context.Context, env *appEnv, all bool) ([]string, error) {
	client, err := env.runtimeClient()
	if err != nil {
		return nil, err
	}

	volumes, err := client.ListVolumes(ctx)
	if err != nil {
		return nil, err
	}
	if len(volumes) == 0 {
		return nil, nil
	}
	if all {
		return volumes, nil
	}

	fmt.Println("  " + dimStyle.Render("available volumes:"))
	for i, name := range volumes {
		fmt.Printf("    %2d. %s\n", i+1, valueStyle.Render(name))
	}
	fmt.Println()
	fmt.Print("  volumes to backup (numbers or names, space separated, 'all'): ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return nil, scanner.Err()
	}
	tokens := strings.Fields(scanner.Text())
	if len(tokens) == 0 {
		return nil, nil
	}
	if len(tokens) == 1 && tokens[0] == "all" {
		return volumes, nil
	}

	selected := []string{}
	seen := map[string]bool{}
	for _, token := range tokens {
		name := token
		if idx, err := strconv.Atoi(token); err == nil {
			if idx < 1 || idx > len(volumes) {
				return nil, fmt.Errorf("selection %d out of range", idx)
			}
			name = volumes[idx-1]
		}
		if !seen[name] {
			seen[name] = true
			selected = append(selected, name)
		}
	}
	return selected, nil
}
