package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/resdevops/maintenance-proxy/internal/server"
)

type checkCommand struct {
	cmd *cobra.Command
}

func newCheckCommand() *checkCommand {
	checkCommand := &checkCommand{}
	checkCommand.cmd = &cobra.Command{
		Use:   "check <address>",
		Short: "Show whether a client address would be let through to the origin",
		RunE:  checkCommand.run,
		Args:  cobra.ExactArgs(1),
	}

	return checkCommand
}

func (c *checkCommand) run(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	allowlist, err := server.NewAllowlist(config.TrustedEntries)
	if err != nil {
		return err
	}

	table := buildCheckTable(allowlist, args[0])
	table.Print(cmd.OutOrStdout(), isTerminal(cmd))

	return nil
}

func buildCheckTable(allowlist *server.Allowlist, address string) *Table {
	table := NewTable()
	table.AddRow([]string{"Trusted entry", "Matches"})

	for _, entry := range allowlist.Entries() {
		table.AddRow([]string{entry, fmt.Sprint(allowlist.Matches(entry, address))})
	}

	decision := server.DecisionMaintenanceServed
	if allowlist.Trusts(address) {
		decision = server.DecisionForwarded
	}
	table.SetFooter(fmt.Sprintf("%q: %s", address, decision))

	return table
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
