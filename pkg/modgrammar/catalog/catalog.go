// Package catalog holds the trade backend's stat template catalog.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
)

// Placeholder is the marker a template uses for a substituted value.
const Placeholder = "#"

// TemplateGroup is one labelled section of the catalog.
type TemplateGroup struct {
	Label   string         `json:"label"`
	Entries []StatTemplate `json:"entries"`
}

// StatTemplate is one backend-recognized modifier template.
type StatTemplate struct {
	ID     string     `json:"id"`
	Text   string     `json:"text"`
	Type   string     `json:"type,omitempty"`
	Option *OptionSet `json:"option,omitempty"`
}

// OptionSet is the closed set of values an enumerated template accepts.
type OptionSet struct {
	Options []Option `json:"options"`
}

// Option is one enumerated substitution.
type Option struct {
	ID   OptionID `json:"id"`
	Text string   `json:"text"`
}

// OptionID is the backend's option id. The backend sends numbers; older
// snapshots carry strings, so both decode.
type OptionID string

// UnmarshalJSON accepts a JSON number or string.
func (o *OptionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = OptionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("option id: %w", err)
	}
	*o = OptionID(n.String())
	return nil
}

// Enumerated reports whether the template has a non-empty option list.
func (t StatTemplate) Enumerated() bool {
	return t.Option != nil && len(t.Option.Options) > 0
}

// Validate checks the fields the grammar builder relies on. Option lists are
// checked per option while building.
func (t StatTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", internalerr.ErrMalformedTemplate)
	}
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: %s: missing text", internalerr.ErrMalformedTemplate, t.ID)
	}
	return nil
}

// Catalog is the ordered list of template groups for one run.
type Catalog struct {
	Groups []TemplateGroup `json:"result"`
}

// Len returns the number of templates across all groups.
func (c *Catalog) Len() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Entries)
	}
	return n
}

// Decode reads the backend's stats response shape.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

// LoadFile reads a catalog previously saved to disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
