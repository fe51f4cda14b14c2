// # internal/parser/loader.go
package parser

import (
	"fmt"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

const (
	LangJava       = "java"
	LangJavaScript = "javascript"
)

type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string
}

// NewGrammarLoader loads the grammars for the requested languages, or both
// when none are named.
func NewGrammarLoader(langs ...string) (*GrammarLoader, error) {
	if len(langs) == 0 {
		langs = []string{LangJava, LangJavaScript}
	}
	gl := &GrammarLoader{
		languages:  make(map[string]*sitter.Language),
		extensions: make(map[string]string),
	}
	for _, lang := range langs {
		switch lang {
		case LangJava:
			gl.languages[LangJava] = sitter.NewLanguage(tree_sitter_java.Language())
			gl.extensions[".java"] = LangJava
		case LangJavaScript:
			gl.languages[LangJavaScript] = sitter.NewLanguage(tree_sitter_javascript.Language())
			gl.extensions[".js"] = LangJavaScript
		default:
			return nil, fmt.Errorf("language %q is not supported", lang)
		}
	}
	return gl, nil
}

func (gl *GrammarLoader) Language(lang string) *sitter.Language {
	return gl.languages[lang]
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	extensions := make([]string, 0, len(gl.extensions))
	for ext := range gl.extensions {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
