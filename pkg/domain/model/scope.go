package model

import (
	"encoding/json"
	"regexp"
	"slices"

	"github.com/m-mizutani/goerr/v2"
)

// ScopeKind discriminates the scope variants.
type ScopeKind string

const (
	ScopeAll      ScopeKind = "all"
	ScopeSpecific ScopeKind = "specific"
	ScopePattern  ScopeKind = "pattern"
)

// Scope decides which distributions an action applies to. It is a tagged
// variant: only the field matching Kind is meaningful.
type Scope struct {
	Kind    ScopeKind
	Names   []string
	Pattern string
}

func AllScope() Scope {
	return Scope{Kind: ScopeAll}
}

func SpecificScope(names ...string) Scope {
	return Scope{Kind: ScopeSpecific, Names: names}
}

// PatternScope stores the raw pattern as entered. An invalid pattern is a
// valid stored state; it is only compiled at match time.
func PatternScope(raw string) Scope {
	return Scope{Kind: ScopePattern, Pattern: raw}
}

// Valid reports whether Kind is one of the known variants. A zero-value
// scope is not valid and must not be persisted.
func (s Scope) Valid() bool {
	switch s.Kind {
	case ScopeAll, ScopeSpecific, ScopePattern:
		return true
	default:
		return false
	}
}

// Matches reports whether the scope covers the given distribution name.
// It is total and never fails: an empty or uncompilable pattern matches
// nothing.
func (s Scope) Matches(distroName string) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeSpecific:
		return slices.Contains(s.Names, distroName)
	case ScopePattern:
		if s.Pattern == "" {
			return false
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(distroName)
	default:
		return false
	}
}

type scopeJSON struct {
	Kind    ScopeKind `json:"kind"`
	Names   []string  `json:"names,omitempty"`
	Pattern string    `json:"pattern,omitempty"`
}

func (s Scope) MarshalJSON() ([]byte, error) {
	doc := scopeJSON{Kind: s.Kind}
	switch s.Kind {
	case ScopeSpecific:
		doc.Names = s.Names
		if doc.Names == nil {
			doc.Names = []string{}
		}
	case ScopePattern:
		doc.Pattern = s.Pattern
	}
	return json.Marshal(doc)
}

func (s *Scope) UnmarshalJSON(data []byte) error {
	var doc scopeJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	switch doc.Kind {
	case ScopeAll, ScopeSpecific, ScopePattern:
	default:
		return goerr.New("unknown scope kind: " + string(doc.Kind))
	}
	s.Kind = doc.Kind
	s.Names = doc.Names
	s.Pattern = doc.Pattern
	return nil
}
