package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resdevops/maintenance-proxy/internal/server"
)

type pageCommand struct {
	cmd            *cobra.Command
	includeHeaders bool
}

func newPageCommand() *pageCommand {
	pageCommand := &pageCommand{}
	pageCommand.cmd = &cobra.Command{
		Use:   "page",
		Short: "Print the maintenance page",
		RunE:  pageCommand.run,
		Args:  cobra.NoArgs,
	}

	pageCommand.cmd.Flags().BoolVar(&pageCommand.includeHeaders, "include-headers", false, "Print the response headers before the page")

	return pageCommand
}

func (c *pageCommand) run(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	page, err := server.NewMaintenancePage(config.PageOptions)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.includeHeaders {
		headers := page.Headers()
		for _, key := range headers.Keys() {
			for _, value := range headers.Values(key) {
				fmt.Fprintf(out, "%s: %s\n", key, value)
			}
		}
		fmt.Fprintln(out)
	}

	_, err = out.Write(page.Body())
	return err
}
