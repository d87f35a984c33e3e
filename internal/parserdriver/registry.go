package parserdriver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
)

// LanguageID names one of the grammars the registry can detect. Only
// LanguageC, LanguageCpp, and LanguageGo have a full extraction ruleset
// (see TreeSitterDriver); the rest are detected for completeness but have
// no symbol extraction wired up.
type LanguageID string

const (
	LanguageUnknown    LanguageID = ""
	LanguageC          LanguageID = "c"
	LanguageCpp        LanguageID = "cpp"
	LanguageGo         LanguageID = "go"
	LanguageJava       LanguageID = "java"
	LanguageJavaScript LanguageID = "javascript"
	LanguageTypeScript LanguageID = "typescript"
	LanguagePython     LanguageID = "python"
	LanguageRust       LanguageID = "rust"
	LanguageCSharp     LanguageID = "csharp"
	LanguagePHP        LanguageID = "php"
	LanguageZig        LanguageID = "zig"
)

// extLang maps a lowercase file extension (with leading dot) to the
// language it belongs to, mirroring the grammar-to-extension assignment
// clangd's own compilation database would make for these families.
var extLang = map[string]LanguageID{
	".c":   LanguageC,
	".h":   LanguageC,
	".cpp": LanguageCpp,
	".cc":  LanguageCpp,
	".cxx": LanguageCpp,
	".hpp": LanguageCpp,
	".hh":  LanguageCpp,

	".go": LanguageGo,

	".java": LanguageJava,

	".js":  LanguageJavaScript,
	".jsx": LanguageJavaScript,
	".mjs": LanguageJavaScript,

	".ts":  LanguageTypeScript,
	".tsx": LanguageTypeScript,

	".py": LanguagePython,

	".rs": LanguageRust,

	".cs": LanguageCSharp,

	".php": LanguagePHP,

	".zig": LanguageZig,
}

// DetectLanguage returns the language a file extension belongs to, or
// LanguageUnknown if the registry has no grammar for it.
func DetectLanguage(ext string) LanguageID {
	return extLang[ext]
}

// grammar lazily constructs the *tree_sitter.Language for id. Every
// grammar in the module's dependency graph is represented here even though
// only C, C++, and Go currently have an extraction ruleset: the registry's
// job is detection, and a caller may want to at least parse and check
// HasError() for a language it cannot yet extract symbols from.
func grammar(id LanguageID) *tree_sitter.Language {
	switch id {
	case LanguageC, LanguageCpp:
		return tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	case LanguageGo:
		return tree_sitter.NewLanguage(tree_sitter_go.Language())
	case LanguageJava:
		return tree_sitter.NewLanguage(tree_sitter_java.Language())
	case LanguageJavaScript:
		return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	case LanguageTypeScript:
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case LanguagePython:
		return tree_sitter.NewLanguage(tree_sitter_python.Language())
	case LanguageRust:
		return tree_sitter.NewLanguage(tree_sitter_rust.Language())
	case LanguageCSharp:
		return tree_sitter.NewLanguage(tree_sitter_csharp.Language())
	case LanguagePHP:
		return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())
	case LanguageZig:
		return tree_sitter.NewLanguage(tree_sitter_zig.Language())
	default:
		return nil
	}
}

// newParserFor returns a parser configured for id, or nil if id is
// unrecognized or the grammar failed to load.
func newParserFor(id LanguageID) *tree_sitter.Parser {
	lang := grammar(id)
	if lang == nil {
		return nil
	}
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		return nil
	}
	return parser
}
