package embeddedsass

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImporter struct {
	canonical string
}

func (s stubImporter) Canonicalize(_ context.Context, url string, _ bool, _ string) (string, error) {
	return s.canonical, nil
}

func (s stubImporter) Load(_ context.Context, _ string) (ImportResult, error) {
	return ImportResult{Contents: "a{color:red}", Syntax: SyntaxCSS}, nil
}

func TestBuildWireImportersAssignsIDToEveryEntry(t *testing.T) {
	entries := []importerEntry{
		NewLoadPathImporter("/styles"),
		CustomImporter(stubImporter{canonical: "test://a"}),
		NewLoadPathImporter("/vendor"),
	}

	wire, bindings := buildWireImporters(entries)

	require.Len(t, wire, 3)
	require.Len(t, bindings, 1)

	// Declaration order: every entry gets an id, monotonically increasing
	// starting at firstImporterID, regardless of kind.
	assert.EqualValues(t, firstImporterID, wire[0].ID)
	assert.EqualValues(t, firstImporterID+1, wire[1].ID)
	assert.EqualValues(t, firstImporterID+2, wire[2].ID)

	assert.Equal(t, wire[1].ID, bindings[0].id)
}

func TestBuildWireImportersLoadPathCarriesDir(t *testing.T) {
	wire, _ := buildWireImporters([]importerEntry{NewLoadPathImporter("/styles")})
	require.Len(t, wire, 1)
	assert.Equal(t, "/styles", wire[0].LoadPath)
}

func TestBuildWireImportersEmpty(t *testing.T) {
	wire, bindings := buildWireImporters(nil)
	assert.Empty(t, wire)
	assert.Empty(t, bindings)
}

func TestDriverBuildImportersStringImporterTakesFirstSlot(t *testing.T) {
	d := &Driver{
		globalImporters: []importerEntry{NewLoadPathImporter("/global")},
	}

	stringImp := CustomImporter(stubImporter{canonical: "test://string-input"})
	_, wire := d.buildImporters(stringImp, []importerEntry{NewLoadPathImporter("/per-call")})

	require.Len(t, wire, 3)
	assert.Equal(t, "", wire[0].LoadPath) // the string input's own (custom) importer
	assert.Equal(t, "/global", wire[1].LoadPath)
	assert.Equal(t, "/per-call", wire[2].LoadPath)
}

func TestDriverBuildImportersNoStringImporterLeavesOrderUnchanged(t *testing.T) {
	d := &Driver{
		globalImporters: []importerEntry{NewLoadPathImporter("/global")},
	}

	_, wire := d.buildImporters(nil, []importerEntry{NewLoadPathImporter("/per-call")})

	require.Len(t, wire, 2)
	assert.Equal(t, "/global", wire[0].LoadPath)
	assert.Equal(t, "/per-call", wire[1].LoadPath)
}
