package embeddedsass

import (
	"context"

	"github.com/joeycumines/go-embeddedsass/protocol"
)

// ImportResult is what a successful Importer.Load call produces.
type ImportResult struct {
	Contents     string
	Syntax       Syntax
	SourceMapURL string
}

// Importer is a host-defined custom importer. Both methods may block; the
// driver never calls them on its own loop
// goroutine (each call runs on a goroutine of its own: see
// tracker.beginClientActivity), so a synchronous implementation is always
// safe here. The ctx passed in is context.Background() and is never
// cancelled.
//
// Canonicalize returns ("", nil) to mean "this importer declines the URL",
// not an error: declining is a normal, expected outcome tried across a
// list of importers.
type Importer interface {
	Canonicalize(ctx context.Context, url string, fromImport bool, containingURL string) (canonicalURL string, err error)
	Load(ctx context.Context, canonicalURL string) (ImportResult, error)
}

// importerBinding pairs a registered Importer with the wire-level id the
// child will use to address it for the lifetime of one compilation.
type importerBinding struct {
	id       uint64
	importer Importer
}

// LoadPathImporter is the host-facing handle for a "load path" importer
// declaration: resolution happens entirely inside the child, so the host
// side is just a directory string waiting to be rendered into the wire's
// WireImporter.LoadPath variant.
type LoadPathImporter struct {
	Dir string
}

// NewLoadPathImporter returns a LoadPathImporter rooted at dir. This
// exists so CompileOptions.Importers can mix load-path and custom
// importers without callers hand-constructing wire types.
func NewLoadPathImporter(dir string) LoadPathImporter {
	return LoadPathImporter{Dir: dir}
}

// importerEntry is the sum type CompileOptions.Importers actually holds:
// either a custom Importer or a LoadPathImporter.
type importerEntry interface {
	isImporterEntry()
}

func (LoadPathImporter) isImporterEntry() {}

// customImporterEntry adapts an Importer into the importerEntry sum type.
type customImporterEntry struct{ Importer Importer }

func (customImporterEntry) isImporterEntry() {}

// buildWireImporters assigns per-compilation ids (starting at
// firstImporterID, in declaration order) to entries, returning both the
// wire descriptors to embed in the CompileRequest and the bindings needed
// to route nested canonicalize/import requests back to the right
// Importer.
func buildWireImporters(entries []importerEntry) ([]*protocol.WireImporter, []importerBinding) {
	ids := newImporterIDAllocator()
	wire := make([]*protocol.WireImporter, 0, len(entries))
	bindings := make([]importerBinding, 0, len(entries))
	for _, e := range entries {
		id := uint64(ids.Next())
		switch t := e.(type) {
		case LoadPathImporter:
			wire = append(wire, &protocol.WireImporter{Kind: protocol.ImporterLoadPath, ID: id, LoadPath: t.Dir})
		case customImporterEntry:
			wire = append(wire, &protocol.WireImporter{Kind: protocol.ImporterCustom, ID: id})
			bindings = append(bindings, importerBinding{id: id, importer: t.Importer})
		}
	}
	return wire, bindings
}
