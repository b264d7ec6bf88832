package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"AXpress/internal/domain"
)

func newPapersCommand(ctx *commandContext) *cobra.Command {
	var domainFlag string

	cmd := &cobra.Command{
		Use:   "papers",
		Short: "List the papers of one domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domain.ParseDomain(domainFlag)
			if err != nil {
				return err
			}
			application, err := ctx.application(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ctx.close()

			papers, err := application.NewSession().Papers(cmd.Context(), d)
			if err != nil {
				return err
			}
			printPapers(cmd, d, papers)
			return nil
		},
	}

	cmd.Flags().StringVarP(&domainFlag, "domain", "d", "", "Domain label or alias")
	_ = cmd.MarkFlagRequired("domain")

	return cmd
}

func printPapers(cmd *cobra.Command, d domain.Domain, papers []domain.Paper) {
	out := cmd.OutOrStdout()
	if len(papers) == 0 {
		fmt.Fprintf(out, "No papers for %s\n", d)
		return
	}

	rows := make([][]string, 0, len(papers))
	for i, paper := range papers {
		file := "-"
		if paper.CanDownload() {
			file = "pdf"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			paper.Title,
			authorLine(paper.Authors),
			placeholder(paper.PublishedAt),
			paper.Source,
			file,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Title", "Authors", "Published", "Source", "File"},
		rows,
		true,
	))
}

func authorLine(authors []string) string {
	switch len(authors) {
	case 0:
		return "-"
	case 1, 2:
		return strings.Join(authors, ", ")
	default:
		return fmt.Sprintf("%s, %s et al.", authors[0], authors[1])
	}
}

func placeholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
