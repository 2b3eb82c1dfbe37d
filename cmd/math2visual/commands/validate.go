package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/7i6ht/math2visual-sub000/internal/genservice"
	"github.com/7i6ht/math2visual-sub000/internal/svgdom"
)

// ErrBundleInvalid indicates a bundle that failed one or more checks.
var ErrBundleInvalid = errors.New("bundle is invalid")

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <bundle.json>",
		Short: "Check a triad bundle for consistency",
		Long: `Check a triad bundle: response schema, mapping ranges against the DSL
text, and SVG parseability of every carried variant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, bundlePath string) error {
	out := cmd.OutOrStdout()
	failures := 0

	report := func(check string, err error) {
		if err != nil {
			failures++

			color.New(color.FgRed).Fprintf(out, "FAIL %s: %v\n", check, err)

			return
		}

		color.New(color.FgGreen).Fprintf(out, "ok   %s\n", check)
	}

	raw, err := os.ReadFile(bundlePath)
	if err != nil {
		return fmt.Errorf("read bundle: %w", err)
	}

	report("response schema", genservice.ValidateResponse(raw))

	bundle, err := genservice.DecodeBundle(raw)
	if err != nil {
		return ErrBundleInvalid
	}

	triad, err := bundle.Triad()
	report("parsed tree", err)

	if triad != nil {
		report("mapping ranges", triad.Mapping.Validate(triad.DSLText))

		variants := []struct {
			label  string
			markup string
		}{
			{"formal svg", triad.SVGFormal},
			{"intuitive svg", triad.SVGIntuitive},
		}

		for _, variant := range variants {
			if variant.markup == "" {
				continue
			}

			_, parseErr := svgdom.Parse(variant.markup)
			report(variant.label, parseErr)
		}
	}

	if failures > 0 {
		return ErrBundleInvalid
	}

	return nil
}