// Package requirements turns a program-requirements document into the
// requirement set of a single degree program.
//
// The document is line oriented:
//
//	## [Program: Computer Science & Engineering]
//	- **Total Credits Required**: 130
//	- **Minimum CGPA**: 2.0
//	- **Mandatory GED**:
//	  - ENG102: Introduction to Composition
//	- **Core Math**:
//	  - MAT116
//
// Only bullets inside the requested program's section are collected.
package requirements

import "github.com/mind-engage/gradaudit/internal/grading"

// Category is one of the five requirement buckets.
type Category string

const (
	GED      Category = "GED"
	Math     Category = "Math"
	Core     Category = "Core"
	Science  Category = "Science"
	Business Category = "Business"
)

// Categories in report order.
var Categories = []Category{GED, Math, Core, Science, Business}

// DisplayName is the heading used in reports.
func (c Category) DisplayName() string {
	switch c {
	case GED:
		return "General Education"
	case Math:
		return "Core Mathematics"
	case Core:
		return "Major Core"
	case Science:
		return "Core Science"
	case Business:
		return "Core Business"
	default:
		return string(c)
	}
}

// Set is what one program requires for graduation.
type Set struct {
	Program string `json:"program" yaml:"program"`
	// Found is false when the document has no section for Program. The set is
	// then empty and must not be read as "nothing left to do".
	Found                bool                  `json:"found" yaml:"found"`
	TotalCreditsRequired int                   `json:"total_credits_required" yaml:"total_credits_required"`
	MinCGPA              float64               `json:"min_cgpa" yaml:"min_cgpa"`
	Courses              map[Category][]string `json:"courses" yaml:"courses"`
}

func newSet(program string) Set {
	s := Set{
		Program: program,
		MinCGPA: grading.DefaultMinCGPA,
		Courses: make(map[Category][]string, len(Categories)),
	}
	for _, c := range Categories {
		s.Courses[c] = []string{}
	}
	return s
}

// Required lists the courses of cat in document order.
func (s Set) Required(cat Category) []string { return s.Courses[cat] }

// CourseCount is the number of required courses across all categories.
func (s Set) CourseCount() int {
	n := 0
	for _, c := range Categories {
		n += len(s.Courses[c])
	}
	return n
}
