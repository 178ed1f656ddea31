package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
)

func TestParseSource(t *testing.T) {
	src, err := ParseSource(" Implicit ")
	require.NoError(t, err)
	assert.Equal(t, Implicit, src)

	_, err = ParseSource("veiled")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestEligibility(t *testing.T) {
	e := DefaultEligibility()

	tests := []struct {
		name string
		item Item
		want bool
	}{
		{"corrupted unique", Item{Name: "Tabula Rasa", FrameType: 3, Corrupted: true, ImplicitMods: []string{"+1 to Level"}}, true},
		{"not corrupted", Item{Name: "Tabula Rasa", FrameType: 3, ImplicitMods: []string{"+1 to Level"}}, false},
		{"rare", Item{Name: "Doom Grip", FrameType: 2, Corrupted: true, ImplicitMods: []string{"+1 to Level"}}, false},
		{"no implicits", Item{Name: "Tabula Rasa", FrameType: 3, Corrupted: true, ExplicitMods: []string{"x"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Eligible(tt.item))
		})
	}

	e.RequireCorrupted = false
	e.Sources = []Source{Enchant, Implicit}
	it := Item{FrameType: 3, ImplicitMods: []string{"b"}, EnchantMods: []string{"a"}}
	assert.True(t, e.Eligible(it))
	assert.Equal(t, []string{"a", "b"}, e.Mods(it))
}

func TestCatalogName(t *testing.T) {
	assert.Equal(t, "Tabula Rasa", Item{Name: "Tabula Rasa", TypeLine: "Simple Robe"}.CatalogName())
	assert.Equal(t, "Simple Robe", Item{TypeLine: "Simple Robe"}.CatalogName())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("items-b-char.json", `{"items":[{"name":"Second","frameType":3}]}`)
	write("items-a-char.json", `{"items":[{"name":"First","frameType":3,"corrupted":true,"implicitMods":["+1 to Level"]}]}`)
	write("passives-a-char.json", `{"items":[{"name":"Jewel","frameType":3}]}`)
	write("ladder-0.json", `{"entries":[]}`)
	write("items-broken.json", `{"items":[`)

	core, logs := observer.New(zapcore.WarnLevel)
	items, err := LoadDir(dir, zap.New(core))
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, "First", items[0].Name)
	assert.Equal(t, []string{"+1 to Level"}, items[0].ImplicitMods)
	assert.Equal(t, "Second", items[1].Name)
	assert.Equal(t, "Jewel", items[2].Name)
	assert.Equal(t, 1, logs.FilterMessage("skipping character file").Len())

	_, err = LoadDir(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}
