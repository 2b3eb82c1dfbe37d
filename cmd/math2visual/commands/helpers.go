// Package commands implements CLI command handlers for math2visual.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/7i6ht/math2visual-sub000/internal/config"
	"github.com/7i6ht/math2visual-sub000/internal/genservice"
	"github.com/7i6ht/math2visual-sub000/internal/observability"
	"github.com/7i6ht/math2visual-sub000/internal/session"
)

// loggerFrom builds the process logger from the root command's persistent
// flags.
func loggerFrom(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	return observability.NewLogger(verbose, quiet)
}

// openSession loads a triad bundle and builds a session with it applied.
// regenFor builds the backend client once the bundle's texts are known; nil
// leaves the session offline. metrics may be nil for one-shot commands that
// expose no scrape endpoint.
func openSession(bundlePath string, cfg *config.Config, regenFor func(*genservice.Bundle) session.Regenerator, metrics *observability.EngineMetrics, logger *slog.Logger) (*session.Session, *genservice.Bundle, error) {
	bundle, err := genservice.LoadBundle(bundlePath)
	if err != nil {
		return nil, nil, err
	}

	triad, err := bundle.Triad()
	if err != nil {
		return nil, nil, err
	}

	var regen session.Regenerator
	if regenFor != nil {
		regen = regenFor(bundle)
	}

	sess := session.New(session.Config{
		Regenerator: regen,
		Logger:      logger,
		Metrics:     metrics,
		Locale:      language.Make(cfg.Display.Locale),
		Threshold:   cfg.Display.Threshold,
	})

	err = sess.ApplyTriad(triad)
	if err != nil {
		return nil, nil, fmt.Errorf("apply bundle: %w", err)
	}

	return sess, bundle, nil
}