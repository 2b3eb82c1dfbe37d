// Package session owns the currently applied triad and enforces the
// replace-the-whole-triad-or-don't discipline: DSL text, component mapping,
// and SVG documents always come from the same backend response cycle. It
// also serializes structural edits so at most one regeneration is in flight.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/text/language"

	"github.com/7i6ht/math2visual-sub000/internal/highlight"
	"github.com/7i6ht/math2visual-sub000/internal/observability"
	"github.com/7i6ht/math2visual-sub000/internal/svgdom"
	"github.com/7i6ht/math2visual-sub000/pkg/dsltree"
	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

// Session errors.
var (
	// ErrBusy rejects a structural edit while a regeneration is in flight.
	ErrBusy = errors.New("session: regeneration in flight")
	// ErrNoSVG indicates a triad that carries no usable SVG variant.
	ErrNoSVG = errors.New("session: triad has no SVG markup")
)

// Regenerator is the generation backend as the session sees it: it accepts
// either full DSL text or a structured patch and returns a complete triad.
type Regenerator interface {
	FromDSL(ctx context.Context, dslText string) (*mapping.Triad, error)
	FromPatch(ctx context.Context, tree *dsltree.Operation, path string, value any) (*mapping.Triad, error)
}

// Config assembles a session. Metrics may be nil; every recorder is a no-op
// on a nil receiver.
type Config struct {
	Regenerator Regenerator
	Logger      *slog.Logger
	Metrics     *observability.EngineMetrics
	Locale      language.Tag
	Threshold   int
}

// Session is the single owner of the applied triad and everything derived
// from it: parsed SVG documents, their handler registries, and the highlight
// orchestrator. Derived state is rebuilt as a unit on every swap and never
// survives its triad.
type Session struct {
	regen     Regenerator
	logger    *slog.Logger
	metrics   *observability.EngineMetrics
	locale    language.Tag
	threshold int
	differ    *diffmatchpatch.DiffMatchPatch

	triad      *mapping.Triad
	docs       []*svgdom.Document
	registries []*svgdom.Registry
	orch       *highlight.Orchestrator
	busy       bool
}

// New creates a session with no triad applied.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		regen:     cfg.Regenerator,
		logger:    logger,
		metrics:   cfg.Metrics,
		locale:    cfg.Locale,
		threshold: cfg.Threshold,
		differ:    diffmatchpatch.New(),
	}
}

// ApplyTriad validates the triad, builds all derived state, and swaps it in
// as one unit. On any failure the previously applied triad stays fully
// intact: nothing is assigned until everything is built.
func (s *Session) ApplyTriad(triad *mapping.Triad) error {
	err := triad.Validate()
	if err != nil {
		return err
	}

	docs, err := parseDocs(triad)
	if err != nil {
		return err
	}

	registries := make([]*svgdom.Registry, len(docs))

	orch := highlight.New(highlight.Config{
		Docs:      docs,
		Mapping:   triad.Mapping,
		MWPText:   triad.MWPText,
		Formula:   triad.Formula,
		Locale:    s.locale,
		Threshold: s.threshold,
	})

	for i, doc := range docs {
		registries[i] = svgdom.NewRegistry()
		svgdom.BindInteractions(doc, registries[i], &docInteractions{session: s, doc: doc})
	}

	s.logSwap(triad)

	s.triad = triad
	s.docs = docs
	s.registries = registries
	s.orch = orch

	return nil
}

// parseDocs parses whichever SVG variants the triad carries, formal first.
func parseDocs(triad *mapping.Triad) ([]*svgdom.Document, error) {
	var docs []*svgdom.Document

	for _, markup := range []string{triad.SVGFormal, triad.SVGIntuitive} {
		if markup == "" {
			continue
		}

		doc, err := svgdom.Parse(markup)
		if err != nil {
			return nil, fmt.Errorf("session: parse svg: %w", err)
		}

		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, ErrNoSVG
	}

	return docs, nil
}

// logSwap logs a compact character diff between the outgoing and incoming
// DSL text. Patch round-trips should produce small diffs; a large one is a
// sign the backend reformatted more than the edited scalar.
func (s *Session) logSwap(next *mapping.Triad) {
	if s.triad == nil {
		s.logger.Debug("triad applied", "dsl_len", len(next.DSLText))

		return
	}

	diffs := s.differ.DiffMain(s.triad.DSLText, next.DSLText, false)
	added, removed := diffCharStats(diffs)

	s.logger.Debug("triad swapped",
		"chars_added", added,
		"chars_removed", removed,
		"missing_entities", len(next.MissingEntities))
}

func diffCharStats(diffs []diffmatchpatch.Diff) (added, removed int) {
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			added += len(diff.Text)
		case diffmatchpatch.DiffDelete:
			removed += len(diff.Text)
		case diffmatchpatch.DiffEqual:
		}
	}

	return added, removed
}

// Triad returns the currently applied triad, or nil before the first apply.
func (s *Session) Triad() *mapping.Triad {
	return s.triad
}

// Mapping returns the applied component mapping, or nil before the first
// apply.
func (s *Session) Mapping() mapping.Mapping {
	if s.triad == nil {
		return nil
	}

	return s.triad.Mapping
}

// Documents returns the parsed SVG documents of the applied triad.
func (s *Session) Documents() []*svgdom.Document {
	return s.docs
}

// Registries returns the handler registries, one per document.
func (s *Session) Registries() []*svgdom.Registry {
	return s.registries
}

// MissingEntities reports entity names the backend found no icons for.
func (s *Session) MissingEntities() []string {
	if s.triad == nil {
		return nil
	}

	return s.triad.MissingEntities
}

// Busy reports whether a regeneration is in flight.
func (s *Session) Busy() bool {
	return s.busy
}

// Highlight resolves and activates a highlight target against the applied
// triad.
func (s *Session) Highlight(path string, elem *highlight.Element) (highlight.Result, error) {
	if s.orch == nil {
		return highlight.Result{}, mapping.ErrNoTriad
	}

	return s.orch.Highlight(path, elem), nil
}

// ClearHighlight deactivates any active highlight target.
func (s *Session) ClearHighlight() {
	if s.orch == nil {
		return
	}

	s.orch.Clear()
}

// LoadDSL sends full DSL text to the backend and applies the resulting triad.
func (s *Session) LoadDSL(ctx context.Context, dslText string) error {
	return s.regenerate(ctx, func(ctx context.Context) (*mapping.Triad, error) {
		return s.regen.FromDSL(ctx, dslText)
	})
}

// EditScalar patches one scalar at path, sends the structured patch to the
// backend, and applies the resulting triad. The patch is applied to a local
// clone first so an unresolvable path fails before any request is sent.
func (s *Session) EditScalar(ctx context.Context, path string, value any) error {
	if s.triad == nil {
		return mapping.ErrNoTriad
	}

	patched, err := dsltree.PatchScalar(s.triad.Tree, path, value)
	s.metrics.RecordPatch(ctx, err)

	if err != nil {
		return err
	}

	return s.regenerate(ctx, func(ctx context.Context) (*mapping.Triad, error) {
		return s.regen.FromPatch(ctx, patched, path, value)
	})
}

// regenerate runs one backend call under the single-in-flight discipline. A
// context cancellation is the user switching away: it resolves silently and
// the last fully applied triad stays untouched.
func (s *Session) regenerate(ctx context.Context, call func(context.Context) (*mapping.Triad, error)) error {
	if s.busy {
		return ErrBusy
	}

	s.busy = true
	defer func() { s.busy = false }()

	done := s.metrics.TrackInflight(ctx)
	defer done()

	started := time.Now()

	triad, err := call(ctx)

	missing := 0
	if triad != nil {
		missing = len(triad.MissingEntities)
	}

	s.metrics.RecordRegeneration(ctx, time.Since(started), missing, err)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("regeneration aborted, triad retained")

			return nil
		}

		return fmt.Errorf("session: regenerate: %w", err)
	}

	return s.ApplyTriad(triad)
}

// docInteractions adapts one document's pointer events onto the session's
// highlight surface.
type docInteractions struct {
	session *Session
	doc     *svgdom.Document
}

func (d *docInteractions) HoverEnter(path string, node svgdom.NodeID) {
	d.session.Highlight(path, &highlight.Element{Doc: d.doc, Node: node}) //nolint:errcheck // No triad means no bound handlers.
}

func (d *docInteractions) HoverLeave() {
	d.session.ClearHighlight()
}

func (d *docInteractions) Click(path string, _ svgdom.NodeID) {
	d.session.Highlight(path, nil) //nolint:errcheck // No triad means no bound handlers.
}