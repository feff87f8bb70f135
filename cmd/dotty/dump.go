package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/skvithalani/dotty/internal/tasty"
)

var (
	dumpAddrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dumpTagStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	dumpNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dumpRefStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dumpHeadStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
)

var dumpNames bool

func init() {
	dumpCmd.Flags().BoolVar(&dumpNames, "names", false, "also list the name pool")
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file.tasty>",
	Short: "Print the sections and records of a pickled artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", args[0], err)
		}
		u, err := tasty.NewUnpickler(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		return dumpArtifact(cmd.OutOrStdout(), args[0], u)
	},
}

func dumpArtifact(out io.Writer, path string, u *tasty.Unpickler) error {
	names := u.Names()
	fmt.Fprintf(out, "%s\n", dumpHeadStyle.Render(path))
	fmt.Fprintf(out, "names: %d entries\n", len(names))
	if dumpNames {
		for i, name := range names {
			fmt.Fprintf(out, "  %s %q\n", dumpAddrStyle.Render(fmt.Sprintf("%4d", i)), name)
		}
	}

	roots, err := u.Roots()
	if err != nil {
		return fmt.Errorf("decoding tree section: %w", err)
	}
	fmt.Fprintf(out, "trees: %d bytes, %d roots\n", u.TreeSize(), len(roots))
	for _, root := range roots {
		dumpNode(out, root, 1)
	}
	return nil
}

func dumpNode(out io.Writer, n *tasty.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s %s",
		dumpAddrStyle.Render(fmt.Sprintf("%6d", n.Addr)),
		indent,
		dumpTagStyle.Render(n.Tag.String()))
	if n.Name != "" {
		line += " " + dumpNameStyle.Render(fmt.Sprintf("%q", n.Name))
	}
	switch {
	case n.IsRef():
		line += " " + dumpRefStyle.Render(fmt.Sprintf("-> %d", n.Value))
	case n.Value != 0:
		line += fmt.Sprintf(" %#x", n.Value)
	}
	fmt.Fprintln(out, line)
	for _, kid := range n.Kids {
		dumpNode(out, kid, depth+1)
	}
}
