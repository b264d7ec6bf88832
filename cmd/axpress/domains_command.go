package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"AXpress/internal/domain"
)

func newDomainsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List the research domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(domain.Domains()))
			for i, d := range domain.Domains() {
				rows = append(rows, []string{strconv.Itoa(i + 1), string(d), d.Alias()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Domain", "Alias"},
				rows,
				true,
			))
			return nil
		},
	}
}
