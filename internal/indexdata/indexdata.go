// Package indexdata is the data model shared by the parser driver, the
// update/partition engine, and the shard store: symbols, references,
// relations, include graphs, and the two per-translation-unit envelopes
// (IndexFileIn from the parser, IndexFileOut to the shard store).
package indexdata

import "github.com/standardbeagle/bgindexd/internal/digest"

// SymbolID stably identifies a symbol across a process lifetime. Opaque to
// everything except equality comparison and use as a map key.
type SymbolID string

// SymbolKind is the tag of the Symbol sum type. Kind-specific behavior
// switches on this instead of dynamic dispatch.
type SymbolKind int

const (
	SymbolKindUnknown SymbolKind = iota
	SymbolKindLazy               // declared but not resolved into a definition yet
	SymbolKindDefinedFunction
	SymbolKindDefinedData
	SymbolKindDefinedType
	SymbolKindMacro
)

// Location pins a byte range to a file, identified by URI (a "file://..."
// string or scheme the URI-to-path cache can resolve).
type Location struct {
	FileURI    string
	StartLine  int
	StartByte  int
	EndLine    int
	EndByte    int
}

// Symbol is a tagged union over symbol kinds. The core touches only ID,
// CanonicalDeclaration, and Definition; Kind-specific fields are opaque
// payloads carried through for the downstream queryable index.
type Symbol struct {
	ID                   SymbolID
	Kind                 SymbolKind
	Name                 string
	Scope                string
	CanonicalDeclaration *Location // nil if the symbol has no declaration site
	Definition           *Location // nil if the symbol has no definition site

	// Signature and Documentation are opaque payload, present only for
	// SymbolKindDefinedFunction/DefinedData/DefinedType.
	Signature     string
	Documentation string
}

// SymbolSlab is a frozen, bulk collection of symbols emitted by one parse.
type SymbolSlab []Symbol

// RefKind classifies how a reference touches its symbol.
type RefKind int

const (
	RefKindUnknown RefKind = iota
	RefKindRead
	RefKindWrite
	RefKindCall
	RefKindDeclaration
)

// Ref is one use of a symbol at a location.
type Ref struct {
	Symbol   SymbolID
	Location Location
	Kind     RefKind
}

// RefSlab is a frozen, bulk collection of references emitted by one parse,
// addressed by symbol id.
type RefSlab []Ref

// RelationKind classifies the edge between two symbols.
type RelationKind int

const (
	RelationKindUnknown RelationKind = iota
	RelationKindBaseOf             // Subject is a base class of Object
	RelationKindOverrides
	RelationKindMemberOf
)

// Relation is a directed edge between two symbols, attached to whichever
// shard holds the subject's declaration.
type Relation struct {
	Subject   SymbolID
	Predicate RelationKind
	Object    SymbolID
}

// RelationSlab is a frozen, bulk collection of relations emitted by one parse.
type RelationSlab []Relation

// NodeFlag is a bit in an IncludeGraphNode's flag set.
type NodeFlag uint8

const (
	FlagIsTU NodeFlag = 1 << iota
	FlagHadErrors
)

// Has reports whether flag is set.
func (f NodeFlag) Has(flag NodeFlag) bool { return f&flag != 0 }

// IncludeGraphNode describes one file's place in an include graph: its own
// digest and flags, plus the URIs it directly includes (which may or may
// not have their own nodes present with non-default fields elsewhere in
// the same graph).
type IncludeGraphNode struct {
	URI            string
	Digest         digest.Digest
	DirectIncludes []string
	Flags          NodeFlag
}

// IncludeGraph maps URI to node. Self-contained: every URI reachable from
// any node's DirectIncludes is a key in the map, possibly with default-zero
// fields if it was only ever referenced, never itself indexed. May contain
// cycles and self-loops.
type IncludeGraph map[string]IncludeGraphNode

// CompileCommand is the external compilation database's per-file build
// invocation, opaque beyond the fields the indexer itself needs.
type CompileCommand struct {
	Filename  string
	Directory string
	Args      []string
}

// IndexFileIn is the parser driver's output for one translation unit: every
// field is populated by the external parser via its four callbacks.
type IndexFileIn struct {
	Symbols   SymbolSlab
	Refs      RefSlab
	Relations RelationSlab
	Sources   IncludeGraph
	Cmd       CompileCommand
}

// IndexFileOut is the persisted, per-file shard. Cmd is populated only on
// the shard for a TU's main file.
type IndexFileOut struct {
	Symbols   SymbolSlab
	Refs      RefSlab
	Relations RelationSlab
	Sources   IncludeGraph
	Cmd       *CompileCommand
}
