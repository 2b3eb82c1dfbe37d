package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/7i6ht/math2visual-sub000/internal/config"
	"github.com/7i6ht/math2visual-sub000/internal/genservice"
	"github.com/7i6ht/math2visual-sub000/internal/observability"
	"github.com/7i6ht/math2visual-sub000/internal/session"
	"github.com/7i6ht/math2visual-sub000/pkg/dslpath"
	"github.com/7i6ht/math2visual-sub000/pkg/dsltree"
	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		configPath string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve <bundle.json>",
		Short: "Expose highlight resolution and metrics over HTTP",
		Long: `Serve a loaded triad bundle: POST /highlight resolves a DSL path,
POST /patch applies a scalar edit through the generation service, and
/metrics, /healthz, /readyz expose operational endpoints.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			if listen != "" {
				cfg.Metrics.Listen = listen
			}

			return runServe(cmd, args[0], cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")

	return cmd
}

// highlightRequest is the POST /highlight body.
type highlightRequest struct {
	Path string `json:"path"`
}

// highlightResponse reports what a highlight request resolved.
type highlightResponse struct {
	Applied       bool            `json:"applied"`
	DSLRange      *mapping.Range  `json:"dsl_range,omitempty"`
	MWPRanges     []mapping.Range `json:"mwp_ranges,omitempty"`
	FormulaRanges []mapping.Range `json:"formula_ranges,omitempty"`
}

// patchRequest is the POST /patch body.
type patchRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// patchResponse reports the regenerated state after a scalar edit.
type patchResponse struct {
	DSLText         string   `json:"dsl_text"`
	MissingEntities []string `json:"missing_entities,omitempty"`
}

// patchStatus maps an edit failure onto an HTTP status: a busy session and a
// bad path are the caller's problem, anything else is the backend's.
func patchStatus(err error) int {
	var pathErr *dsltree.PathError

	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.As(err, &pathErr):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func runServe(cmd *cobra.Command, bundlePath string, cfg *config.Config) error {
	logger := loggerFrom(cmd)

	mux := http.NewServeMux()

	server, err := observability.NewDiagnosticsServer(cfg.Metrics.Listen, mux)
	if err != nil {
		return err
	}
	defer server.Close()

	metrics, err := observability.NewEngineMetrics(server.Meter())
	if err != nil {
		return err
	}

	regenFor := func(bundle *genservice.Bundle) session.Regenerator {
		return genservice.New(genservice.Config{
			BaseURL:    cfg.Service.URL,
			MWPText:    bundle.MWPText,
			Formula:    bundle.Formula,
			HTTPClient: &http.Client{Timeout: cfg.ServiceTimeout()},
			Logger:     logger,
		})
	}

	sess, _, err := openSession(bundlePath, cfg, regenFor, metrics, logger)
	if err != nil {
		return err
	}

	mux.HandleFunc("POST /highlight", func(rw http.ResponseWriter, req *http.Request) {
		var body highlightRequest

		decodeErr := json.NewDecoder(req.Body).Decode(&body)
		if decodeErr != nil || body.Path == "" {
			http.Error(rw, "body must be {\"path\": ...}", http.StatusBadRequest)

			return
		}

		started := time.Now()

		result, highlightErr := sess.Highlight(body.Path, nil)
		if highlightErr != nil {
			http.Error(rw, highlightErr.Error(), http.StatusConflict)

			return
		}

		metrics.RecordHighlight(req.Context(), kindLabel(body.Path), time.Since(started))

		response := highlightResponse{
			Applied:       result.Applied,
			MWPRanges:     result.MWPRanges,
			FormulaRanges: result.FormulaRanges,
		}
		if result.HasDSLRange {
			response.DSLRange = &result.DSLRange
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(response)
	})

	mux.HandleFunc("POST /patch", func(rw http.ResponseWriter, req *http.Request) {
		var body patchRequest

		decodeErr := json.NewDecoder(req.Body).Decode(&body)
		if decodeErr != nil || body.Path == "" {
			http.Error(rw, "body must be {\"path\": ..., \"value\": ...}", http.StatusBadRequest)

			return
		}

		editErr := sess.EditScalar(req.Context(), body.Path, body.Value)
		if editErr != nil {
			http.Error(rw, editErr.Error(), patchStatus(editErr))

			return
		}

		response := patchResponse{
			DSLText:         sess.Triad().DSLText,
			MissingEntities: sess.MissingEntities(),
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(response)
	})

	logger.Info("serving", "addr", server.Addr(), "bundle", bundlePath)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", server.Addr())

	waitForShutdown()
	sess.ClearHighlight()

	return nil
}

func kindLabel(path string) string {
	kind, ok := dslpath.Classify(dslpath.Base(path))
	if !ok {
		return "unknown"
	}

	return string(kind)
}

func waitForShutdown() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}