package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/7i6ht/math2visual-sub000/internal/config"
	"github.com/7i6ht/math2visual-sub000/internal/svgdom"
	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

// NewHighlightCommand creates the highlight command.
func NewHighlightCommand() *cobra.Command {
	var (
		configPath string
		path       string
	)

	cmd := &cobra.Command{
		Use:   "highlight <bundle.json>",
		Short: "Resolve a highlight target against a triad bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			return runHighlight(cmd, args[0], path, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVarP(&path, "path", "p", "", "DSL path to highlight")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runHighlight(cmd *cobra.Command, bundlePath, path string, cfg *config.Config) error {
	sess, _, err := openSession(bundlePath, cfg, nil, nil, loggerFrom(cmd))
	if err != nil {
		return err
	}

	result, err := sess.Highlight(path, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !result.Applied {
		color.New(color.FgRed).Fprintf(out, "Path %q has no highlightable kind\n", path)

		return nil
	}

	triad := sess.Triad()

	if result.HasDSLRange {
		writeRange(out, "DSL", result.DSLRange, triad.DSLText)
	}

	for _, r := range result.MWPRanges {
		writeRange(out, "MWP", r, triad.MWPText)
	}

	for _, r := range result.FormulaRanges {
		writeRange(out, "Formula", r, triad.Formula)
	}

	for i, doc := range sess.Documents() {
		marked := countMarked(doc)
		fmt.Fprintf(out, "SVG document %d: %d node(s) marked\n", i, marked)
	}

	return nil
}

func writeRange(out io.Writer, label string, r mapping.Range, text string) {
	fmt.Fprintf(out, "%s [%d,%d): %s\n", label, r.Start, r.End, color.GreenString("%q", r.Slice(text)))
}

func countMarked(doc *svgdom.Document) int {
	count := 0

	for _, tagged := range doc.Tagged() {
		for _, marker := range []svgdom.Marker{svgdom.MarkerBox, svgdom.MarkerText, svgdom.MarkerIcon} {
			if doc.Marked(tagged.ID, marker) {
				count++
			}
		}
	}

	return count
}