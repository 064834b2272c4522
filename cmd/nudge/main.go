package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/nudge/internal/cli"
	"github.com/example/nudge/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "nudge",
		Short:   "nudge - task accountability reminders and escalation",
		Version: version.String(),
		Long: `nudge tracks group-chat tasks: it announces them, reminds the channel as
the due time approaches, and escalates directly to assignees who have not
acknowledged completion.`,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.TaskCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
