// Package syntax recognizes parameter markers inside strings.
//
// A marker is a parameter name wrapped in a delimiter pair. Names start with
// a letter or underscore and continue with letters, digits, and underscores.
// Three notations are supported and differ only in their delimiters:
//
//	dollar_brace    ${name}
//	brace           {name}
//	double_bracket  [[name]]
//
// Syntaxes are immutable and safe for concurrent use.
package syntax

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

const namePattern = `[A-Za-z_][A-Za-z0-9_]*`

// Names of the supported notations.
const (
	NameDollarBrace   = "dollar_brace"
	NameBrace         = "brace"
	NameDoubleBracket = "double_bracket"
)

// Syntax is one marker notation.
type Syntax struct {
	name    string
	open    string
	close   string
	pattern *regexp.Regexp
	exact   *regexp.Regexp
}

var (
	// DollarBrace recognizes ${name}. It is the default notation.
	DollarBrace = newSyntax(NameDollarBrace, "${", "}")

	// Brace recognizes {name}.
	Brace = newSyntax(NameBrace, "{", "}")

	// DoubleBracket recognizes [[name]].
	DoubleBracket = newSyntax(NameDoubleBracket, "[[", "]]")
)

var registry = map[string]*Syntax{
	NameDollarBrace:   DollarBrace,
	NameBrace:         Brace,
	NameDoubleBracket: DoubleBracket,
}

func newSyntax(name, open, close string) *Syntax {
	expr := regexp.QuoteMeta(open) + "(" + namePattern + ")" + regexp.QuoteMeta(close)
	return &Syntax{
		name:    name,
		open:    open,
		close:   close,
		pattern: regexp.MustCompile(expr),
		exact:   regexp.MustCompile(`^` + expr + `$`),
	}
}

// Lookup returns the syntax registered under name.
func Lookup(name string) (*Syntax, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown marker syntax %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names returns the registered syntax names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Name returns the notation's registered name.
func (s *Syntax) Name() string { return s.name }

// String implements fmt.Stringer.
func (s *Syntax) String() string { return s.name }

// FindAll returns the marker names in str from left to right, duplicates
// included. It returns nil when str contains no marker.
func (s *Syntax) FindAll(str string) []string {
	matches := s.pattern.FindAllStringSubmatch(str, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}
	return names
}

// HasMarkers reports whether str contains at least one marker.
func (s *Syntax) HasMarkers(str string) bool {
	return s.pattern.MatchString(str)
}

// IsExact returns the marker name when str consists of exactly one marker
// and nothing else.
func (s *Syntax) IsExact(str string) (string, bool) {
	m := s.exact.FindStringSubmatch(str)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ReplaceFunc replaces every marker in str with the text returned by fn for
// its name. When fn reports false the marker is left as written.
func (s *Syntax) ReplaceFunc(str string, fn func(name string) (string, bool)) string {
	return s.pattern.ReplaceAllStringFunc(str, func(marker string) string {
		name := marker[len(s.open) : len(marker)-len(s.close)]
		if text, ok := fn(name); ok {
			return text
		}
		return marker
	})
}
