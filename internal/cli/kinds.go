package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vvka-141/cxn/internal/provider"
)

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the resource kinds cxn can probe",
		Long: `List the resource kinds cxn can probe with their aliases, accepted URL
schemes, default port and the driver module version they require.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			width := 0
			styled := styledOutput()
			if styled {
				width = terminalWidth()
			}
			return printKinds(cmd.OutOrStdout(), kindRegistry, styled, width)
		},
	}
}

// printKinds renders the registry as a table. Unstyled output has no
// borders or colors so that it can be piped into other tools.
func printKinds(w io.Writer, reg *provider.Registry, styled bool, width int) error {
	t := table.New().Headers("KIND", "ALIASES", "SCHEMES", "PORT", "DRIVER")
	for _, k := range reg.Kinds() {
		t.Row(
			k.Name,
			dashIfEmpty(strings.Join(k.Aliases, ", ")),
			strings.Join(k.Schemes, ", "),
			strconv.Itoa(k.DefaultPort),
			k.Requirement,
		)
	}

	if styled {
		t.Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case col == 0:
					return nameStyle
				default:
					return cellStyle
				}
			})
		if width > 0 {
			t.Width(width)
		}
	} else {
		t.BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderHeader(false).
			BorderColumn(false).
			StyleFunc(func(row, col int) lipgloss.Style {
				return plainStyle
			})
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
