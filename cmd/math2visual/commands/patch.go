package commands

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/7i6ht/math2visual-sub000/internal/config"
	"github.com/7i6ht/math2visual-sub000/internal/genservice"
	"github.com/7i6ht/math2visual-sub000/internal/session"
	"github.com/7i6ht/math2visual-sub000/pkg/dsltree"
)

// NewPatchCommand creates the patch command.
func NewPatchCommand() *cobra.Command {
	var (
		configPath string
		path       string
		value      string
		useService bool
	)

	cmd := &cobra.Command{
		Use:   "patch <bundle.json>",
		Short: "Apply a scalar edit to the DSL tree",
		Long: `Apply a scalar edit to the bundle's DSL tree.

Without --regenerate the patched tree is printed as JSON. With --regenerate
the structured patch is sent to the generation service and the resulting
DSL text is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			return runPatch(cmd, args[0], path, value, useService, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVarP(&path, "path", "p", "", "DSL path of the scalar to edit")
	cmd.Flags().StringVar(&value, "value", "", "new scalar value")
	cmd.Flags().BoolVar(&useService, "regenerate", false, "send the patch to the generation service")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func runPatch(cmd *cobra.Command, bundlePath, path, value string, useService bool, cfg *config.Config) error {
	logger := loggerFrom(cmd)

	var regenFor func(*genservice.Bundle) session.Regenerator
	if useService {
		regenFor = func(bundle *genservice.Bundle) session.Regenerator {
			return genservice.New(genservice.Config{
				BaseURL:    cfg.Service.URL,
				MWPText:    bundle.MWPText,
				Formula:    bundle.Formula,
				HTTPClient: &http.Client{Timeout: cfg.ServiceTimeout()},
				Logger:     logger,
			})
		}
	}

	sess, _, err := openSession(bundlePath, cfg, regenFor, nil, logger)
	if err != nil {
		return err
	}

	if !useService {
		return printPatchedTree(cmd, sess.Triad().Tree, path, value)
	}

	ctx := cmd.Context()

	err = sess.EditScalar(ctx, path, value)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	color.New(color.FgGreen).Fprintln(out, "Regenerated.")
	fmt.Fprintln(out, sess.Triad().DSLText)

	if missing := sess.MissingEntities(); len(missing) > 0 {
		color.New(color.FgYellow).Fprintf(out, "Missing icons: %v\n", missing)
	}

	return nil
}

func printPatchedTree(cmd *cobra.Command, tree *dsltree.Operation, path, value string) error {
	patched, err := dsltree.PatchScalar(tree, path, value)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(patched, "", "  ")
	if err != nil {
		return fmt.Errorf("encode patched tree: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

	return nil
}