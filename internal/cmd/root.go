package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "maintenance-proxy",
	Short:        "Serve a maintenance page to everyone except trusted callers",
	SilenceUsage: true,
}

func Execute() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	registerConfigFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRunCommand().cmd)
	rootCmd.AddCommand(newCheckCommand().cmd)
	rootCmd.AddCommand(newPageCommand().cmd)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
