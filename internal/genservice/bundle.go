package genservice

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

// Bundle is a generation response saved to disk together with the MWP text
// and formula it was generated for. It lets the CLI exercise the engine
// without a live backend.
type Bundle struct {
	MWPText string `json:"mwp_text"`
	Formula string `json:"formula,omitempty"`

	Response
}

// LoadBundle reads and schema-validates a triad bundle file.
func LoadBundle(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genservice: read bundle: %w", err)
	}

	return DecodeBundle(raw)
}

// DecodeBundle schema-validates and unmarshals raw bundle bytes.
func DecodeBundle(raw []byte) (*Bundle, error) {
	err := ValidateResponse(raw)
	if err != nil {
		return nil, err
	}

	var bundle Bundle

	err = json.Unmarshal(raw, &bundle)
	if err != nil {
		return nil, fmt.Errorf("genservice: decode bundle: %w", err)
	}

	return &bundle, nil
}

// Triad converts the bundle into an applicable triad.
func (b *Bundle) Triad() (*mapping.Triad, error) {
	return b.Response.Triad(b.MWPText, b.Formula)
}