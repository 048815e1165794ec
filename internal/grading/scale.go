package grading

import "strings"

const (
	// DefaultMinCGPA applies when a program document does not state a minimum.
	DefaultMinCGPA = 2.0
	// ProbationCGPA is the fixed academic-probation line reported alongside an audit.
	ProbationCGPA = 2.0
)

// Scale maps letter grades to GPA points and classifies them as passing.
// The point table and the non-passing set are independent: F has a point
// value but does not pass, an unknown grade has no point value but passes.
type Scale struct {
	points     map[string]float64
	nonPassing map[string]struct{}
}

// Standard is the fixed letter scale used by every audit. It is never mutated.
var Standard = newScale(
	map[string]float64{
		"A": 4.0, "A-": 3.7,
		"B+": 3.3, "B": 3.0, "B-": 2.7,
		"C+": 2.3, "C": 2.0, "C-": 1.7,
		"D+": 1.3, "D": 1.0, "F": 0.0,
	},
	[]string{"F", "W", "I", "X"},
)

// newScale copies its inputs; keys are upper-cased.
func newScale(points map[string]float64, nonPassing []string) *Scale {
	s := &Scale{
		points:     make(map[string]float64, len(points)),
		nonPassing: make(map[string]struct{}, len(nonPassing)),
	}
	for g, p := range points {
		s.points[strings.ToUpper(g)] = p
	}
	for _, g := range nonPassing {
		s.nonPassing[strings.ToUpper(g)] = struct{}{}
	}
	return s
}

// Points returns the GPA value of grade. ok is false for W, I, X and any
// unrecognized string, which are excluded from CGPA entirely.
func (s *Scale) Points(grade string) (p float64, ok bool) {
	p, ok = s.points[strings.ToUpper(grade)]
	return p, ok
}

// IsPassing reports whether grade earns credit. Anything outside the
// non-passing set passes, including grades the scale does not know.
func (s *Scale) IsPassing(grade string) bool {
	_, failed := s.nonPassing[strings.ToUpper(grade)]
	return !failed
}

// Points looks grade up on the Standard scale.
func Points(grade string) (float64, bool) { return Standard.Points(grade) }

// IsPassing classifies grade on the Standard scale.
func IsPassing(grade string) bool { return Standard.IsPassing(grade) }
