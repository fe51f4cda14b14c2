// # internal/ast/modifiers.go
package ast

import "strings"

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModFinal
	ModAbstract
	ModNative
	ModSynchronized
	ModTransient
	ModVolatile
	ModDefault
	ModStrictfp
)

var modifierWords = []struct {
	mod  Modifiers
	word string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModStatic, "static"},
	{ModFinal, "final"},
	{ModAbstract, "abstract"},
	{ModNative, "native"},
	{ModSynchronized, "synchronized"},
	{ModTransient, "transient"},
	{ModVolatile, "volatile"},
	{ModDefault, "default"},
	{ModStrictfp, "strictfp"},
}

// ParseModifier maps a modifier keyword to its bit; unknown words yield 0.
func ParseModifier(word string) Modifiers {
	for _, m := range modifierWords {
		if m.word == word {
			return m.mod
		}
	}
	return 0
}

func (m Modifiers) Has(flag Modifiers) bool {
	return m&flag != 0
}

func (m Modifiers) IsStatic() bool   { return m.Has(ModStatic) }
func (m Modifiers) IsAbstract() bool { return m.Has(ModAbstract) }
func (m Modifiers) IsNative() bool   { return m.Has(ModNative) }

func (m Modifiers) String() string {
	var words []string
	for _, w := range modifierWords {
		if m.Has(w.mod) {
			words = append(words, w.word)
		}
	}
	return strings.Join(words, " ")
}
