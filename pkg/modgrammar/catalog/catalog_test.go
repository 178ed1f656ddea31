package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
)

const sampleStats = `{
  "result": [
    {
      "label": "Explicit",
      "entries": [
        {"id": "explicit.stat_587431675", "text": "#% increased Critical Strike Chance", "type": "explicit"},
        {"id": "explicit.stat_2974417149", "text": "Allocates #", "type": "explicit",
         "option": {"options": [{"id": 1, "text": "Eldritch Battery"}, {"id": "2", "text": "Iron Will"}]}}
      ]
    },
    {"label": "Implicit", "entries": []}
  ]
}`

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader(sampleStats))
	require.NoError(t, err)

	require.Len(t, c.Groups, 2)
	assert.Equal(t, "Explicit", c.Groups[0].Label)
	assert.Equal(t, 2, c.Len())

	tmpl := c.Groups[0].Entries[1]
	require.True(t, tmpl.Enumerated())
	assert.Equal(t, OptionID("1"), tmpl.Option.Options[0].ID)
	assert.Equal(t, OptionID("2"), tmpl.Option.Options[1].ID)
	assert.False(t, c.Groups[0].Entries[0].Enumerated())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trade-stats.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleStats), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		tmpl StatTemplate
		ok   bool
	}{
		{"plain", StatTemplate{ID: "a", Text: "+# to Strength"}, true},
		{"missing id", StatTemplate{Text: "+# to Strength"}, false},
		{"blank text", StatTemplate{ID: "a", Text: "   "}, false},
		{"empty options", StatTemplate{ID: "a", Text: "Allocates #", Option: &OptionSet{}}, true},
		{"duplicate option", StatTemplate{ID: "a", Text: "Allocates #", Option: &OptionSet{Options: []Option{
			{ID: "1", Text: "Iron Will"}, {ID: "2", Text: "Iron Will"},
		}}}, true},
		{"options", StatTemplate{ID: "a", Text: "Allocates #", Option: &OptionSet{Options: []Option{
			{ID: "1", Text: "Iron Will"}, {ID: "2", Text: "Iron Grip"},
		}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, internalerr.ErrMalformedTemplate)
			}
		})
	}
}
