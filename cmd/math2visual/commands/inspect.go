package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/7i6ht/math2visual-sub000/internal/config"
	"github.com/7i6ht/math2visual-sub000/pkg/dslpath"
	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "inspect <bundle.json>",
		Short: "Show the component mapping of a triad bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			return runInspect(cmd, args[0], cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")

	return cmd
}

func runInspect(cmd *cobra.Command, bundlePath string, cfg *config.Config) error {
	sess, _, err := openSession(bundlePath, cfg, nil, nil, loggerFrom(cmd))
	if err != nil {
		return err
	}

	triad := sess.Triad()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "DSL text: %s characters\n", humanize.Comma(int64(len(triad.DSLText))))
	fmt.Fprintf(out, "MWP text: %s characters\n", humanize.Comma(int64(len(triad.MWPText))))

	tagged := 0
	for _, doc := range sess.Documents() {
		tagged += len(doc.Tagged())
	}

	fmt.Fprintf(out, "SVG: %d document(s), %s addressable node(s)\n",
		len(sess.Documents()), humanize.Comma(int64(tagged)))

	if missing := sess.MissingEntities(); len(missing) > 0 {
		color.New(color.FgYellow).Fprintf(out, "Missing icons: %s\n", strings.Join(missing, ", "))
	}

	fmt.Fprintln(out)
	writeMappingTable(out, triad.Mapping)

	return nil
}

func writeMappingTable(out io.Writer, m mapping.Mapping) {
	paths := make([]string, 0, len(m))
	for path := range m {
		paths = append(paths, path)
	}

	// Document order: by range start, then by path for stable ties.
	sort.Slice(paths, func(i, j int) bool {
		ri, rj := m[paths[i]].Range, m[paths[j]].Range

		if ri.Start != rj.Start {
			return ri.Start < rj.Start
		}

		return paths[i] < paths[j]
	})

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"PATH", "RANGE", "KIND", "VALUE"})

	for _, path := range paths {
		component := m[path]
		kind := ""

		if k, ok := dslpath.Classify(path); ok {
			kind = string(k)
		}

		tbl.AppendRow(table.Row{
			path,
			fmt.Sprintf("[%d,%d)", component.Range.Start, component.Range.End),
			kind,
			component.Value,
		})
	}

	tbl.Render()
}