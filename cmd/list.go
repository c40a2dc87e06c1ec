package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/volkeep/volkeep/internal/transfer"
	"github.com/volkeep/volkeep/pkg/models"
)

var (
	listRemote bool
	listVolume string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archives in the local or remote store",
	Long: `List archives in the local archive store, or in a remote host's
store with --remote.

Examples:
  volkeep list
  volkeep list --volume pgdata
  volkeep list --remote --address 192.168.1.20 --user backup`,
	Args: cobra.NoArgs,
	Run:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listRemote, "remote", false, "list a remote host's archive store")
	listCmd.Flags().StringVar(&listVolume, "volume", "", "only show archives of this volume")
	addRemoteFlags(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	env, err := newAppEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}
	defer env.Close()

	if listRemote {
		runListRemote(env)
		return
	}

	fmt.Println(titleStyle.Render("==> local archives"))
	fmt.Println()

	if err := env.store.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	var archives []models.Archive
	if listVolume != "" {
		archives, err = env.store.ListVolume(listVolume)
	} else {
		archives, err = env.store.List()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	for _, a := range archives {
		fmt.Printf("  %s\n", successStyle.Render(a.Basename()))
		fmt.Printf("    volume: %s\n", dimStyle.Render(a.VolumeName))
		fmt.Printf("    host: %s\n", dimStyle.Render(a.HostLabel))
		fmt.Printf("    size: %s\n", dimStyle.Render(humanize.Bytes(uint64(a.SizeBytes))))
		fmt.Printf("    created: %s (%s)\n",
			dimStyle.Render(a.Timestamp.Format("2006-01-02 15:04:05")),
			dimStyle.Render(humanize.RelTime(a.Timestamp, time.Now(), "ago", "from now")))
		fmt.Println()
	}

	if len(archives) == 0 {
		fmt.Println(dimStyle.Render("  no archives found"))
	}
}

func runListRemote(env *appEnv) {
	if err := transfer.CheckDependencies(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	endpoint, err := env.endpoint(remoteUser, remoteAddr, remoteStore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> archives on %s", endpoint.Target())))
	fmt.Println()

	ctx, stop := env.signalContext()
	defer stop()

	eng := transfer.NewEngine(env.log)
	names, err := eng.ListRemote(ctx, endpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	if len(names) == 0 {
		fmt.Println(dimStyle.Render("  no archives found"))
		return
	}
	for _, name := range names {
		fmt.Printf("  %s\n", valueStyle.Render(name))
	}
}
