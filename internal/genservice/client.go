// Package genservice is the HTTP client for the generation backend: it sends
// full DSL text or a structured scalar patch and converts the JSON response
// into a triad. Responses are checked against an embedded JSON schema first,
// so a malformed one is rejected before anything could half-apply.
package genservice

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/7i6ht/math2visual-sub000/pkg/dsltree"
	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

// Client errors.
var (
	// ErrBadStatus indicates a non-200 backend response.
	ErrBadStatus = errors.New("genservice: unexpected response status")
	// ErrInvalidResponse indicates a response that failed schema validation.
	ErrInvalidResponse = errors.New("genservice: response failed schema validation")
	// ErrGeneration indicates the backend rejected both SVG variants.
	ErrGeneration = errors.New("genservice: generation failed for both variants")
)

//go:embed response-schema.json
var responseSchema []byte

//nolint:gochecknoglobals // Compiled once, read-only afterwards.
var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
)

// loadSchema compiles the embedded response schema once. A broken embedded
// schema is a programming error and panics.
func loadSchema() *gojsonschema.Schema {
	schemaOnce.Do(func() {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(responseSchema))
		if err != nil {
			panic(fmt.Sprintf("genservice: embedded schema: %v", err))
		}

		compiledSchema = schema
	})

	return compiledSchema
}

// ValidateResponse checks raw response bytes against the embedded schema and
// returns ErrInvalidResponse with the violations listed when they fail.
func ValidateResponse(raw []byte) error {
	result, err := loadSchema().Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("genservice: validate response: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(details, "; "))
}

// defaultTimeout bounds a generation round-trip.
const defaultTimeout = 30 * time.Second

// Patch is the structured-edit request form: one scalar changed at path,
// together with the already-patched tree the backend re-serializes.
type Patch struct {
	Path       string             `json:"path"`
	Value      any                `json:"value"`
	ParsedTree *dsltree.Operation `json:"parsed_tree"`
}

// Request is the generation request body. Exactly one of DSLText and Patch
// is set.
type Request struct {
	DSLText string `json:"dsl_text,omitempty"`
	Patch   *Patch `json:"patch,omitempty"`
}

// Response is the generation response body.
type Response struct {
	DSLText         string          `json:"dsl_text"`
	SVGFormal       string          `json:"svg_formal,omitempty"`
	SVGIntuitive    string          `json:"svg_intuitive,omitempty"`
	FormalError     string          `json:"formal_error,omitempty"`
	IntuitiveError  string          `json:"intuitive_error,omitempty"`
	MissingEntities []string        `json:"missing_entities,omitempty"`
	Mapping         mapping.Mapping `json:"component_mapping"`
	ParsedTree      json.RawMessage `json:"parsed_tree"`
}

// Config assembles a client.
type Config struct {
	// BaseURL is the backend root; requests go to BaseURL + "/generate".
	BaseURL string
	// MWPText and Formula accompany every triad built from a response; the
	// backend does not echo them.
	MWPText string
	Formula string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one generation backend.
type Client struct {
	baseURL string
	mwp     string
	formula string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		mwp:     cfg.MWPText,
		formula: cfg.Formula,
		http:    httpClient,
		logger:  logger,
	}
}

// FromDSL requests regeneration from full DSL text.
func (c *Client) FromDSL(ctx context.Context, dslText string) (*mapping.Triad, error) {
	return c.generate(ctx, Request{DSLText: dslText})
}

// FromPatch requests regeneration from a structured scalar patch.
func (c *Client) FromPatch(ctx context.Context, tree *dsltree.Operation, path string, value any) (*mapping.Triad, error) {
	return c.generate(ctx, Request{Patch: &Patch{Path: path, Value: value, ParsedTree: tree}})
}

func (c *Client) generate(ctx context.Context, request Request) (*mapping.Triad, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("genservice: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("genservice: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Unwrap so a user abort surfaces as context.Canceled.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("genservice: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("genservice: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	response, err := c.decode(raw)
	if err != nil {
		return nil, err
	}

	return response.Triad(c.mwp, c.formula)
}

// decode schema-validates the raw body and unmarshals it.
func (c *Client) decode(raw []byte) (*Response, error) {
	err := ValidateResponse(raw)
	if err != nil {
		c.logger.Warn("generation response rejected", "error", err)

		return nil, err
	}

	var response Response

	err = json.Unmarshal(raw, &response)
	if err != nil {
		return nil, fmt.Errorf("genservice: decode response: %w", err)
	}

	return &response, nil
}

// Triad converts the response into an applicable triad. A variant error on
// one SVG style is tolerated (the other still renders); both failing is a
// generation failure.
func (r *Response) Triad(mwpText, formula string) (*mapping.Triad, error) {
	if r.SVGFormal == "" && r.SVGIntuitive == "" {
		return nil, fmt.Errorf("%w: formal: %s, intuitive: %s",
			ErrGeneration, orNone(r.FormalError), orNone(r.IntuitiveError))
	}

	tree, err := dsltree.Decode(r.ParsedTree)
	if err != nil {
		return nil, fmt.Errorf("genservice: decode parsed tree: %w", err)
	}

	return &mapping.Triad{
		DSLText:         r.DSLText,
		MWPText:         mwpText,
		Formula:         formula,
		SVGFormal:       r.SVGFormal,
		SVGIntuitive:    r.SVGIntuitive,
		Mapping:         r.Mapping,
		Tree:            tree,
		MissingEntities: r.MissingEntities,
	}, nil
}

func orNone(message string) string {
	if message == "" {
		return "none"
	}

	return message
}