// # internal/parser/pool.go
package parser

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parsers of one grammar so that units can
// be parsed and verified from many goroutines without a parser per file.
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree := sp.Parse(source, nil)
type ParserPool struct {
	lang *sitter.Language
	pool sync.Pool

	leased   int
	leasedMu sync.Mutex
}

// NewParserPool creates a pool for the given language grammar.
func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get returns a parser configured for the pool's grammar.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	_ = sp.SetLanguage(p.lang)

	p.leasedMu.Lock()
	p.leased++
	p.leasedMu.Unlock()
	return sp
}

// Put resets sp and returns it to the pool. Callers must not use sp after
// calling Put.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}

	p.leasedMu.Lock()
	p.leased--
	p.leasedMu.Unlock()

	sp.Reset()
	p.pool.Put(sp)
}

// Leased returns the number of parsers currently handed out.
func (p *ParserPool) Leased() int {
	p.leasedMu.Lock()
	defer p.leasedMu.Unlock()
	return p.leased
}
