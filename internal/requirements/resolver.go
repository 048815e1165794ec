package requirements

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	headerRe = regexp.MustCompile(`^## \[Program: (.*)\]`)
	courseRe = regexp.MustCompile(`^\s*-\s*([A-Z]{3}[0-9]{3}L?)`)
	intRe    = regexp.MustCompile(`[0-9]+`)
	decRe    = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
)

const (
	labelCredits = "- **Total Credits Required**:"
	labelMinCGPA = "- **Minimum CGPA**:"
)

var categoryLabels = map[string]Category{
	"- **Mandatory GED**:": GED,
	"- **Core Math**:":     Math,
	"- **Major Core**:":    Core,
	"- **Core Business**:": Business,
	"- **Core Science**:":  Science,
}

type lineKind int

const (
	lineOther lineKind = iota
	lineHeader
	lineCredits
	lineMinCGPA
	lineCategory
	lineCourse
)

// line is a classified, trimmed document line.
type line struct {
	kind     lineKind
	text     string
	program  string   // lineHeader
	category Category // lineCategory
	course   string   // lineCourse
}

func classify(raw string) line {
	s := strings.TrimSpace(raw)
	l := line{text: s}
	if m := headerRe.FindStringSubmatch(s); m != nil {
		l.kind, l.program = lineHeader, strings.TrimSpace(m[1])
		return l
	}
	switch {
	case strings.HasPrefix(s, labelCredits):
		l.kind = lineCredits
		return l
	case strings.HasPrefix(s, labelMinCGPA):
		l.kind = lineMinCGPA
		return l
	}
	for label, cat := range categoryLabels {
		if strings.HasPrefix(s, label) {
			l.kind, l.category = lineCategory, cat
			return l
		}
	}
	if m := courseRe.FindStringSubmatch(s); m != nil {
		l.kind, l.course = lineCourse, m[1]
	}
	return l
}

// state is the scanner's whole memory. The two fields change independently:
// a header sets inProgram and clears category, a category label sets
// category, nothing else touches either.
type state struct {
	inProgram bool
	category  Category // "" until a category label is seen
}

// Resolver extracts one program's Set from a requirements document.
type Resolver struct {
	target string
	st     state
	set    Set
}

// NewResolver resolves the section whose header name equals program exactly.
func NewResolver(program string) *Resolver {
	return &Resolver{target: program, set: newSet(program)}
}

// Feed consumes the next document line.
func (r *Resolver) Feed(raw string) {
	l := classify(raw)
	if l.kind == lineHeader {
		r.st = state{inProgram: l.program == r.target}
		if r.st.inProgram {
			r.set.Found = true
		}
		return
	}
	if !r.st.inProgram {
		return
	}
	switch l.kind {
	case lineCredits:
		// Last one wins; a label without a number changes nothing.
		if n, err := strconv.Atoi(intRe.FindString(strings.TrimPrefix(l.text, labelCredits))); err == nil {
			r.set.TotalCreditsRequired = n
		}
	case lineMinCGPA:
		if v, err := strconv.ParseFloat(decRe.FindString(strings.TrimPrefix(l.text, labelMinCGPA)), 64); err == nil {
			r.set.MinCGPA = v
		}
	case lineCategory:
		r.st.category = l.category
	case lineCourse:
		if r.st.category != "" {
			r.set.Courses[r.st.category] = append(r.set.Courses[r.st.category], l.course)
		}
	}
}

// Set returns the resolved requirements.
func (r *Resolver) Set() Set { return r.set }

// Resolve scans doc for program's section. An unknown program yields an
// empty Set with Found=false, not an error.
func Resolve(doc, program string) Set {
	r := NewResolver(program)
	for _, ln := range strings.Split(doc, "\n") {
		r.Feed(ln)
	}
	return r.Set()
}

// ListPrograms returns the program names of every section header, in
// document order.
func ListPrograms(doc string) []string {
	var out []string
	for _, ln := range strings.Split(doc, "\n") {
		if l := classify(ln); l.kind == lineHeader {
			out = append(out, l.program)
		}
	}
	return out
}
