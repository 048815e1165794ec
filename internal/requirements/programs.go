package requirements

import (
	"sort"
	"strings"
)

// DefaultProgram is audited when no program is named.
const DefaultProgram = "Computer Science & Engineering"

var builtinAliases = map[string]string{
	"CSE": "Computer Science & Engineering",
	"BBA": "Business Administration",
}

// Aliases maps short program acronyms to the names used in section headers.
type Aliases struct{ m map[string]string }

// NewAliases adds extra acronyms to the built-in ones. Built-ins always win.
func NewAliases(extra map[string]string) *Aliases {
	m := make(map[string]string, len(builtinAliases)+len(extra))
	for k, v := range extra {
		if k = strings.ToUpper(strings.TrimSpace(k)); k != "" && v != "" {
			m[k] = v
		}
	}
	for k, v := range builtinAliases {
		m[k] = v
	}
	return &Aliases{m: m}
}

// DefaultAliases holds only the built-in acronyms.
var DefaultAliases = NewAliases(nil)

// Resolve returns the full program name for an acronym (any case), or name
// itself when it is not a known acronym.
func (a *Aliases) Resolve(name string) string {
	if full, ok := a.m[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return full
	}
	return name
}

// Alias is one acronym entry.
type Alias struct {
	Acronym string `json:"acronym" yaml:"acronym"`
	Program string `json:"program" yaml:"program"`
}

// List returns every acronym sorted.
func (a *Aliases) List() []Alias {
	out := make([]Alias, 0, len(a.m))
	for k, v := range a.m {
		out = append(out, Alias{Acronym: k, Program: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Acronym < out[j].Acronym })
	return out
}
