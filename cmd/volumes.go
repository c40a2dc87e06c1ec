package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var volumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "List named volumes known to the container runtime",
	Args:  cobra.NoArgs,
	Run:   runVolumes,
}

func init() {
	rootCmd.AddCommand(volumesCmd)
}

func runVolumes(cmd *cobra.Command, args []string) {
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

	volumes, err := client.ListVolumes(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> named volumes (%s)", client.GetRuntimeInfo().GetRuntimeName())))
	fmt.Println()

	if len(volumes) == 0 {
		fmt.Println(dimStyle.Render("  no named volumes found"))
		return
	}
	for _, name := range volumes {
		fmt.Printf("  %s\n", valueStyle.Render(name))
	}
}
