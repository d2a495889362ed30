package embeddedsass

import "github.com/joeycumines/go-embeddedsass/protocol"

// OutputStyle controls the formatting of generated CSS.
type OutputStyle = protocol.OutputStyle

const (
	OutputExpanded   = protocol.OutputExpanded
	OutputCompressed = protocol.OutputCompressed
	OutputNested     = protocol.OutputNested
	OutputCompact    = protocol.OutputCompact
)

// Syntax identifies a stylesheet's surface syntax.
type Syntax = protocol.Syntax

const (
	SyntaxSCSS     = protocol.SyntaxSCSS
	SyntaxIndented = protocol.SyntaxIndented
	SyntaxCSS      = protocol.SyntaxCSS
)

// SourceMapStyle controls whether/how a source map is produced.
type SourceMapStyle = protocol.SourceMapStyle

const (
	SourceMapNone             = protocol.SourceMapNone
	SourceMapSeparateSources  = protocol.SourceMapSeparateSources
	SourceMapEmbeddedSources  = protocol.SourceMapEmbeddedSources
)

// SourceSpan locates a range of source text in a compile error or log
// event.
type SourceSpan = protocol.SourceSpan

// CompileOptions configures one compilation.
type CompileOptions struct {
	Style          OutputStyle
	SourceMap      bool
	SourceMapStyle SourceMapStyle

	// Importers are consulted in order for any URL the child's default
	// resolution doesn't already satisfy; construct entries with
	// NewLoadPathImporter or by wrapping an Importer with
	// CustomImporter.
	Importers []importerEntry

	// StringImporter, if set, resolves relative imports for a CompileString
	// input itself (as opposed to imports found while compiling one of
	// Importers' results). It occupies the first importer slot ahead of
	// Importers, which shift accordingly. Ignored by CompileFile, whose
	// input already has a real path to resolve relative imports against.
	StringImporter importerEntry

	// The driver's global functions (passed to NewDriver) and Functions
	// (compilation-scoped) are merged: a
	// compilation-scoped signature name shadows a global one of the same
	// name.
	Functions []HostFunction
}

// CustomImporter wraps imp as a CompileOptions.Importers entry.
func CustomImporter(imp Importer) importerEntry {
	return customImporterEntry{Importer: imp}
}

// CompileResult is the successful outcome of a compilation.
type CompileResult struct {
	CSS       string
	SourceMap string
}
