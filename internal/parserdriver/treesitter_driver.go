package parserdriver

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/bgindexd/internal/debug"
	"github.com/standardbeagle/bgindexd/internal/digest"
	bgerrors "github.com/standardbeagle/bgindexd/internal/errors"
	"github.com/standardbeagle/bgindexd/internal/fsvfs"
	"github.com/standardbeagle/bgindexd/internal/indexdata"
)

// query holds one language's extraction ruleset: a single S-expression
// query plus the capture names TreeSitterDriver knows how to interpret.
type query struct {
	lang   LanguageID
	source string
}

// queries is the extraction ruleset for the three languages this driver
// actually walks. Every other grammar in the registry is detection-only:
// TreeSitterDriver.Parse still parses and error-checks unsupported
// languages, it just reports no symbols for them.
var queries = map[LanguageID]query{
	LanguageC: {
		lang: LanguageC,
		source: `
        (function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
        (struct_specifier name: (type_identifier) @struct.name) @struct
        (enum_specifier name: (type_identifier) @enum.name) @enum
        (preproc_include) @import
        (call_expression function: (identifier) @call.name) @call
    `,
	},
	LanguageCpp: {
		lang: LanguageCpp,
		source: `
        (function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
        (function_definition declarator: (function_declarator declarator: (field_identifier) @method.name)) @method
        (class_specifier name: (type_identifier) @class.name) @class
        (struct_specifier name: (type_identifier) @struct.name) @struct
        (enum_specifier name: (type_identifier) @enum.name) @enum
        (preproc_include) @import
        (call_expression function: (identifier) @call.name) @call
    `,
	},
	LanguageGo: {
		lang: LanguageGo,
		source: `
        (function_declaration name: (identifier) @function.name) @function
        (method_declaration
            receiver: (parameter_list (parameter_declaration type: (_) @method.receiver))
            name: (field_identifier) @method.name) @method
        (type_declaration (type_spec name: (type_identifier) @type.name)) @type
        (import_spec path: (interpreted_string_literal) @import.path) @import
        (call_expression function: (identifier) @call.name) @call
    `,
	},
}

// TreeSitterDriver is the reference Driver implementation: it parses C,
// C++, and Go translation units with go-tree-sitter and extracts function,
// method, type, and call information, following C/C++ #include edges to
// build the include graph (Go imports are not followed). Every other registered grammar is parsed only
// far enough to report HasError; no symbols are extracted for it.
type TreeSitterDriver struct{}

// NewTreeSitterDriver constructs a driver. Stateless: safe to share across
// goroutines, since each Parse call builds its own tree_sitter.Parser.
func NewTreeSitterDriver() *TreeSitterDriver {
	return &TreeSitterDriver{}
}

func (d *TreeSitterDriver) Parse(cmd indexdata.CompileCommand, fsys fsvfs.FS, filter FileFilter) (indexdata.IndexFileIn, bool, error) {
	result := indexdata.IndexFileIn{
		Sources: indexdata.IncludeGraph{},
		Cmd:     cmd,
	}

	main := cmd.Filename
	lang := DetectLanguage(strings.ToLower(filepath.Ext(main)))
	if lang == LanguageUnknown {
		return result, false, bgerrors.NewParserSetupError(main, fmt.Errorf("no grammar registered for extension %q", filepath.Ext(main)))
	}

	symbolNames := make(map[string]indexdata.SymbolID) // per-TU name -> id, for local call resolution

	hadErrors := false
	visited := map[string]bool{}
	queue := []struct {
		path  string
		isTU  bool
	}{{path: main, isTU: true}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		abs := filepath.Clean(cur.path)
		if visited[abs] {
			continue
		}
		visited[abs] = true

		if !cur.isTU && !filter(abs) {
			continue
		}

		content, err := fsys.ReadFile(abs)
		if err != nil {
			if err == fsvfs.ErrNotFound {
				debug.LogIndexing("parserdriver: %s not found, skipping (treated as transient)\n", abs)
				continue
			}
			return result, hadErrors, bgerrors.NewTransientIOError(abs, "read", err)
		}

		fileLang := lang
		if !cur.isTU {
			fileLang = DetectLanguage(strings.ToLower(filepath.Ext(abs)))
			if fileLang == LanguageUnknown {
				fileLang = lang // headers commonly lack a distinguishing extension
			}
		}

		fileDigest := digest.Sum(content)
		uri := pathToURI(abs)

		var fileErrored bool
		includes, err := d.parseOne(fileLang, abs, uri, content, &result, symbolNames)
		if err != nil {
			return result, hadErrors, err
		}
		fileErrored = includes.hadErrors
		hadErrors = hadErrors || fileErrored

		var flags indexdata.NodeFlag
		if cur.isTU {
			flags |= indexdata.FlagIsTU
		}
		if fileErrored {
			flags |= indexdata.FlagHadErrors
		}

		result.Sources[uri] = indexdata.IncludeGraphNode{
			URI:            uri,
			Digest:         fileDigest,
			DirectIncludes: includes.directIncludeURIs,
			Flags:          flags,
		}

		for _, inc := range includes.directIncludePaths {
			if !visited[inc] {
				queue = append(queue, struct {
					path string
					isTU bool
				}{path: inc, isTU: false})
			}
		}
	}

	return result, hadErrors, nil
}

// parseResult carries the per-file extraction output that feeds both the
// TU-wide slabs (appended directly into result) and the caller's BFS queue.
type parseResult struct {
	hadErrors           bool
	directIncludeURIs   []string
	directIncludePaths  []string
}

func (d *TreeSitterDriver) parseOne(lang LanguageID, abs, uri string, content []byte, result *indexdata.IndexFileIn, symbolNames map[string]indexdata.SymbolID) (parseResult, error) {
	parser := newParserFor(lang)
	if parser == nil {
		return parseResult{}, bgerrors.NewParserSetupError(abs, fmt.Errorf("failed to configure grammar for %s", lang))
	}
	defer parser.Close()

	tree := parser.Parse(content, nil)
	if tree == nil {
		return parseResult{}, bgerrors.NewParserExecutionError(abs, fmt.Errorf("parse returned no tree"))
	}
	defer tree.Close()

	root := tree.RootNode()
	pr := parseResult{hadErrors: root.HasError()}

	q, ok := queries[lang]
	if !ok {
		// Detection-only language: nothing more to extract.
		return pr, nil
	}

	tsLang := grammar(lang)
	compiled, qerr := tree_sitter.NewQuery(tsLang, q.source)
	// go-tree-sitter is known to return a typed nil error alongside a valid
	// query; only the nil-ness of compiled itself is trustworthy.
	_ = qerr
	if compiled == nil {
		return pr, bgerrors.NewParserSetupError(abs, fmt.Errorf("failed to compile query for %s", lang))
	}
	defer compiled.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	captureNames := compiled.CaptureNames()
	matches := cursor.Matches(compiled, root, content)

	// First pass: collect definitions so calls can resolve to a symbol id
	// defined in this file or in a file of the same TU walked before it.
	type pending struct {
		capture string
		node    tree_sitter.Node
		name    string
	}
	var defs []pending
	var calls []pending
	var imports []tree_sitter.Node

	for {
		m := matches.Next()
		if m == nil {
			break
		}
		names := map[string]string{}
		for _, c := range m.Captures {
			cn := captureNames[c.Index]
			if strings.HasSuffix(cn, ".name") || strings.HasSuffix(cn, ".path") {
				names[cn] = string(content[c.Node.StartByte():c.Node.EndByte()])
			}
		}
		for _, c := range m.Captures {
			cn := captureNames[c.Index]
			switch cn {
			case "function", "method", "class", "struct", "enum", "type":
				nameKey := cn + ".name"
				defs = append(defs, pending{capture: cn, node: c.Node, name: names[nameKey]})
			case "call":
				calls = append(calls, pending{capture: cn, node: c.Node, name: names["call.name"]})
			case "import":
				imports = append(imports, c.Node)
			}
		}
	}

	for _, def := range defs {
		if def.name == "" {
			continue
		}
		kind := indexdata.SymbolKindDefinedFunction
		if def.capture == "class" || def.capture == "struct" || def.capture == "enum" || def.capture == "type" {
			kind = indexdata.SymbolKindDefinedType
		}
		id := indexdata.SymbolID(fmt.Sprintf("%s#%s", abs, def.name))
		loc := &indexdata.Location{
			FileURI:   uri,
			StartLine: int(def.node.StartPosition().Row),
			StartByte: int(def.node.StartByte()),
			EndLine:   int(def.node.EndPosition().Row),
			EndByte:   int(def.node.EndByte()),
		}
		result.Symbols = append(result.Symbols, indexdata.Symbol{
			ID:                   id,
			Kind:                 kind,
			Name:                 def.name,
			CanonicalDeclaration: loc,
			Definition:           loc,
		})
		symbolNames[def.name] = id
	}

	for _, call := range calls {
		target, ok := symbolNames[call.name]
		if !ok {
			// Open question #2's spirit: a reference whose target cannot
			// be resolved within the files seen so far is dropped rather
			// than fabricated.
			continue
		}
		result.Refs = append(result.Refs, indexdata.Ref{
			Symbol: target,
			Kind:   indexdata.RefKindCall,
			Location: indexdata.Location{
				FileURI:   uri,
				StartLine: int(call.node.StartPosition().Row),
				StartByte: int(call.node.StartByte()),
				EndLine:   int(call.node.EndPosition().Row),
				EndByte:   int(call.node.EndByte()),
			},
		})
	}

	for _, imp := range imports {
		incPath, isPathInclude := resolveIncludePath(lang, imp, content, abs)
		if incPath == "" {
			continue
		}
		if isPathInclude {
			pr.directIncludePaths = append(pr.directIncludePaths, incPath)
			pr.directIncludeURIs = append(pr.directIncludeURIs, pathToURI(incPath))
		}
	}

	return pr, nil
}

// resolveIncludePath extracts the literal target of a #include/import node
// and, for C/C++, resolves it against the including file's directory. Only
// quote-form (non-system) includes are resolvable without a compiler's
// system include search path, matching the scope this driver targets.
func resolveIncludePath(lang LanguageID, node tree_sitter.Node, content []byte, includingFile string) (path string, isFileInclude bool) {
	text := string(content[node.StartByte():node.EndByte()])

	switch lang {
	case LanguageC, LanguageCpp:
		trimmed := strings.TrimSpace(strings.TrimPrefix(text, "#include"))
		if strings.HasPrefix(trimmed, "\"") {
			trimmed = strings.Trim(trimmed, "\"")
			return filepath.Join(filepath.Dir(includingFile), trimmed), true
		}
		// Angle-bracket system includes have no resolvable location here.
		return "", false
	case LanguageGo:
		// Go import paths name packages, not files; there is no file to
		// walk into, so the import is neither followed nor recorded.
		return "", false
	default:
		return "", false
	}
}

func pathToURI(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}
